// Package policies holds named behavior constants that tests assert on
// and reviewers can find in one place.
package policies

// ContinueOnLinkFailure controls whether a failure to link one module
// into the build tree fails the whole modules stage. The historical
// behavior is to record the module error and keep linking the rest;
// the stage itself still succeeds.
const ContinueOnLinkFailure = true

// StagingDirPrefix names the temporary install staging directories
// created as siblings of the install destination. Stale directories
// with this prefix are removed at the start of the next run.
const StagingDirPrefix = "forgerepo-stage-"
