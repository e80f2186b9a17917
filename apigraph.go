// Package apigraph turns API documentation sites into workflow graphs.
// Starting from a root URL it discovers documentation pages, asks a
// language model to convert each page into structured Action descriptors,
// and links natural-language prerequisite strings into references between
// Actions.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., goquery/,
// gemini/, http/) or, for orchestration, after what they do (pipeline/,
// extract/, link/).
package apigraph
