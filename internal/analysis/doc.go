// Package analysis characterizes a recorded levitation run.
//
//   - [StepResponse]: rise time, overshoot and settling time toward the setpoint
//   - [ErrorSpectrum]: power spectrum of the tracking error, for spotting
//     controller oscillation
//   - [PhasePortrait]: position against velocity as terminal art
//
// Every function works on samples from sim.Simulation.History or storage,
// so a run can be analysed long after it finished:
//
//	resp, err := analysis.StepResponse(samples, analysis.DefaultSettleBand)
//	if err == nil && resp.Settled {
//	    fmt.Printf("settled in %.2fs\n", resp.SettlingTime)
//	}
package analysis
