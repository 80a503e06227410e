// Package physics models the levitated ball and the force acting on it.
//
// The ball is a one-dimensional [dynamo.System] with state
// [position, velocity] on a vertical axis (up is positive) and a single
// control input: the net actuator force in newtons. Gravity and viscous
// drag are part of the system itself.
//
//   - [Ball]: equations of motion and energy
//   - [Attractor]: idealized point attractor and its force law
//   - [Actuator]: drive rate limit and saturation
//   - [Integrator]: advances a [BallState] with substepping
//
// # Force Law
//
// The attractor pulls towards its position with magnitude
//
//	|F| = Gain * |drive| / (1 + (d/Softening)^2)
//
// where d is the signed distance from the ball to the attractor. The
// softening length keeps the force finite at d = 0 (capped at
// Gain*|drive|), so the ball can pass through the attractor without a
// singularity. With Softening = 1 m this is the classic force/(1+d²)
// falloff.
//
// # Substepping
//
// A frame that took longer than [Config.MaxStep] is split into
// ceil(dt/MaxStep) equal substeps. The actuator force is held constant
// over the whole frame; gravity and drag are re-evaluated every substep.
//
//	integ, _ := physics.NewIntegrator(physics.DefaultConfig())
//	next, err := integ.Advance(state, force, mass, 0.25) // 13 substeps
package physics
