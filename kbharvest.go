// Package kbharvest assembles a structured knowledge base from configured
// web sources and PDF documents. It discovers article URLs on listing
// pages, fetches and normalizes page content into a uniform item schema
// with a fallback escalation path for blocked or JS-heavy pages, and
// segments long-form PDF text into chapter-level records.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., goquery/,
// zenrows/, pdf/).
package kbharvest
