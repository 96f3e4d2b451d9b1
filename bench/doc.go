// Package bench holds the pieces shared by the report pipelines: locating
// benchmark logs, extracting named fields from them, grouping and averaging
// repeated measurements, and checking that an expected set of experiment
// parameters was covered before anything is rendered.
package bench
