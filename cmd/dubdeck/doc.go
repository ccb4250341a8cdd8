// Command dubdeck is the command-line client for the dubbing platform.
//
// It drives the project creation workflow end to end: choosing a
// source (local file or YouTube link), collecting dubbing settings,
// uploading or registering the source, and following job progress to
// completion. It also lists backend projects and the local creation
// history.
package main
