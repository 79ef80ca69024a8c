// Package domain defines the core domain types for the evalvault research-evaluation workflow.
//
// This package contains the four persisted entities and their value objects:
// users create queries, evaluators attach evaluations to queries, and
// evaluations carry zero or more files (trajectories, reports, deliverables,
// pre-processing data).
//
// # Core Types
//
// User represents an account identified by a unique username, owning queries
// (as creator) and evaluations (as evaluator).
//
// Query represents a research request with a short (lazy) and long (detail)
// form, an optional creator and an optional priority.
//
// Evaluation represents one evaluator's assessment of a query, carrying an
// optional quality score, trajectory text and markdown report.
//
// File represents a binary artifact attached to an evaluation. FileType is a
// closed enumeration: trajectory, report, deliverable, pre_data.
//
// # Change Structs
//
// Each mutable entity has an explicit change struct (UserChanges, QueryChanges,
// EvaluationChanges, FileChanges) with one pointer per mutable field. A nil
// field means "leave unchanged". Unknown fields cannot be expressed, so they
// are rejected at compile time rather than ignored at runtime.
//
// # Design Principles
//
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
// - Rich type system with meaningful constants and enumerations
package domain
