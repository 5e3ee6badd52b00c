// Package balancer distributes requests across a mutable pool of backend
// instances. Selection policy is fixed at construction; instances can be
// added and removed at runtime for dynamic discovery and health probing.
package balancer
