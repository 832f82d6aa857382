package domain

// domain package contains the Domain Models and Interfaces for knitlabel,
// the execution pipeline of labeling sources.
//
// `domain/ENTITY.go` has high-level entities (Domain Model types) and functions.
// For example, `domain/payload.go` contains the `Payload` entity.
//
// `domain/ENTITY` directory contains the "physical" representation of the entities in RDB.
// For example, `domain/payload/db/payload.go` declares the database interface of payloads,
// and `domain/payload/db/postgres` implements it.
// Running payloads as k8s Jobs is out of this package; see `pkg/payload/runner`.
//
// `domain/labeler/db` aggregates all database interfaces into a Session,
// which is the unit of persistence lifetime.
//
// # Entities
//
// - `source`: Information Source. User-authored labeling logic, rule-based (labeling function)
// or learned (active learner). Sources belong to a labeling task of a project.
//
// - `payload`: one execution attempt of a source. Payloads are CREATED, then FINISHED or FAILED.
// Its logs are the user-facing record of what happened while the payload was executed.
//
// - `label`: Label associations produced by sources, and labels of labeling tasks.
// Each successful ingestion replaces all associations previously produced by the same source.
//
// - `record`: Records of a project. Only existence, token statistics and knowledge bases are visible from here.
//
// - `embedding`: Embeddings of records. Learned sources read embedding tensor exports.
//
// - `notification`: user-facing messages, rendered from templates.
//
// - `statistics`: accuracy statistics of sources against manual labels.
