package types

// Version is the canonical project version.
// The CLI, the configuration file format and the dataset record layout share
// this version per the lockstep versioning policy.
const Version = "0.3.0"

// RecordVersion is the version stamped into persisted fixture records.
const RecordVersion = Version
