/*
Package config loads gridcore scheduler configuration from a YAML file
using gopkg.in/yaml.v3, the same parsing style used elsewhere in this
module for structured manifests.

# Usage

	cfg, err := config.Load("gridcore.yaml")
	if err != nil {
		log.Fatal(err.Error())
	}

A missing file is not an error - Load returns config.Default() verbatim,
since a runnable demo node should start with zero configuration.

# Fields

PartitionWorkers / GenericWorkers size the two worker pools; defaults are
max(2, NumCPU) and max(2, NumCPU/2) respectively, per the scheduler's sizing
rule. WorkerRestartPolicy selects what happens to a partition worker that
dies from a fatal panic: "respawn" (default) or "escalate". QueueSoftLimit is
parsed but no component reads it: it neither logs nor bounds a queue.
*/
package config
