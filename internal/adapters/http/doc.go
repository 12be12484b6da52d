// Package http exposes stored dominoes as a JSON API built on chi.
package http
