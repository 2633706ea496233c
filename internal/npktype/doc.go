// Package npktype defines the types shared by the npk package and its
// internal packages. It exists to avoid import cycles between the root
// package, the header reader, and the extraction engine.
package npktype
