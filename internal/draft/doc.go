// Package draft holds the in-progress project-creation form data.
//
// A draft accumulates across wizard steps and is discarded when the
// session closes. It is never persisted. The source portion is a tagged
// variant so a file source and a YouTube source can never coexist.
package draft
