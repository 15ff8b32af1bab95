// Package preview holds the domain types and collaborator interfaces shared by
// the landing-page codec, classifier, resolver, renderer, dispatcher, and the
// pre-warm simulator.
package preview
