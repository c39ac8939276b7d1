// Package scanner walks a Commons category tree breadth-first and buckets
// the image files it discovers by their depth from the root category.
//
// The traversal uses a plain FIFO frontier with a visited set: a category
// reachable through several parents is processed once, at the depth of its
// first dequeue. The depth bound cuts off subcategory expansion only, so
// categories at the bound still contribute their own files.
package scanner
