// Package audit keeps the change log: every write routed through a Recorder
// leaves ChangeRecords committed with it, which are then published to live
// subscribers and deleted by the Sweeper once they age out.
package audit
