package match

const (
	// EngineVersion is the current version of the matching engine
	EngineVersion = "v1.0.0"

	// defaultCommandBuffer is the capacity of a Sequencer's command channel.
	defaultCommandBuffer = 1024
)
