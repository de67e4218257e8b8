// Package evolve searches the space of elliptic-curve domain parameters with
// two independent metaheuristics, a genetic algorithm and a particle swarm,
// both scoring candidates with a fitness function built on curve validation
// and a bounded Pollard's rho simulation.
//
// Both engines are single-threaded and deterministic for a fixed random seed.
package evolve
