/*
Package snap converts Snap (TD Snap / Snap Core First) page sets to and from the
canonical tree.

A page set is a zip container holding one SQLite database; bare databases are
accepted too. Vendor versions disagree on columns, so the reader probes the
schema once (PRAGMA table_info) and selects NULL for every optional column that
is missing. Audio and image payloads live in PageSetData rows keyed by a content
hash and are written through a deduplicating content store.
*/
package snap
