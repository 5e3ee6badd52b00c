// Package strategy implements the load balancing selection policies:
// round robin, random, and least connections. A strategy is chosen per
// pool at construction time and is fixed for the pool's lifetime.
package strategy
