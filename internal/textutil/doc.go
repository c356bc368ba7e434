// Package textutil turns correction ids and other free text into names that
// are safe to use as file names.
package textutil
