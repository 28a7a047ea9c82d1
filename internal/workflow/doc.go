// Package workflow runs the end-to-end rename pipeline: gather the input
// files, resolve each one against the metadata caches and the remote
// service, plan canonical names for the whole batch, then apply or report
// the renames.
package workflow
