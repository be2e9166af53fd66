package pipeline

// StageName identifies a build stage.
type StageName string

const (
	StagePrepareDestination StageName = "prepare_destination"
	StageFetchSource        StageName = "fetch_source"
	StageCleanArtifacts     StageName = "clean_artifacts"
	StageLocateRoot         StageName = "locate_root"
	StageFuseInputs         StageName = "fuse_inputs"
	StageRelocateFigures    StageName = "relocate_figures"
	StageAppendHint         StageName = "append_hint"
	StageWriteRoot          StageName = "write_root"
	StagePruneDirectories   StageName = "prune_directories"
	StageRunToolchain       StageName = "run_toolchain"
)

// StageDef pairs a stage name with its function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// defaultStages is the canonical build order.
func defaultStages() []StageDef {
	return []StageDef{
		{StagePrepareDestination, stagePrepareDestination},
		{StageFetchSource, stageFetchSource},
		{StageCleanArtifacts, stageCleanArtifacts},
		{StageLocateRoot, stageLocateRoot},
		{StageFuseInputs, stageFuseInputs},
		{StageRelocateFigures, stageRelocateFigures},
		{StageAppendHint, stageAppendHint},
		{StageWriteRoot, stageWriteRoot},
		{StagePruneDirectories, stagePruneDirectories},
		{StageRunToolchain, stageRunToolchain},
	}
}
