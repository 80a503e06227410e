// Package control provides the PID controller that closes the levitation loop.
//
// A [PID] consumes one measurement per step and returns an actuator output.
// Its gains are hot-reloadable between steps through [PID.Configure] or the
// [dynamo.Configurable] methods; its integral and derivative memory is only
// cleared by [PID.Reset].
//
// # Usage
//
//	pid, _ := control.NewPID(control.DefaultParams())
//	out, err := pid.Update(measured, setpoint, dt)
//
// The integral accumulator is clamped to ±IntegralLimit (default 10 m·s)
// and the derivative is taken on the measurement unless
// DerivativeOnMeasurement is false.
package control
