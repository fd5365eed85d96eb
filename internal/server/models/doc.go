// Package models defines the persisted entities of the procedure builder and
// the in-memory ProcedureTree used for validation, revisioning and export.
package models
