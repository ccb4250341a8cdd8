// Package language normalizes dubbing language inputs.
//
// The creation wizard accepts languages as ISO codes ("en"), English names
// ("English"), or Korean display names ("영어") and stores BCP-47 codes.
// All conversions are consolidated here so the draft, CLI, and mock server
// agree on one representation.
package language
