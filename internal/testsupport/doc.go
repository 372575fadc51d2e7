// Package testsupport holds fixtures shared by package tests: isolated
// configs, opened caches, and report readers.
package testsupport
