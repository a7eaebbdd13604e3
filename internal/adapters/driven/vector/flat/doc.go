// Package flat provides an exact, in-memory nearest-neighbour index.
//
// Vectors are stored back to back in a single []float32 with parallel key and
// text slices, so entry i occupies data[i*dim:(i+1)*dim]. Search computes the
// squared Euclidean distance to every entry and keeps the k smallest in a
// bounded max-heap. This is the right trade-off for corpora of up to a few
// hundred thousand chunks; an approximate index (IVF, HNSW) can replace it
// behind driven.VectorIndex without changing callers.
//
// The index is not persisted. It is rebuilt from the document store on start.
package flat
