// Package services holds the shared failure taxonomy for external
// collaborators (hashing, AniDB, filesystem) and the helpers used to wrap
// errors with component context. Subpackages implement the collaborators
// themselves.
package services
