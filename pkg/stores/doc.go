// Package stores provides the result sinks of the inventory engine.
// FileStore and ObjectStore write one CloudFormation-shaped document per resource
// type, so the output can be checked with template tooling such as cfn-guard.
// SQLiteStore keeps the run history with WAL mode and embedded migrations.
// MultiSink fans a result out to several sinks.
package stores
