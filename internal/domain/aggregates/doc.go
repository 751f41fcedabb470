// Package aggregates defines the write boundaries of the catalog core.
//
// An aggregate method runs as one transaction: the catalog/backup mutation and
// its audit row commit together or not at all. Contracts here carry no
// persistence details; implementations live in internal/data/aggregates.
package aggregates
