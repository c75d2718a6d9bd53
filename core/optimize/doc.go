// Package optimize computes the cost-minimizing hourly dispatch of a household
// battery and PV installation.
//
// For every day window a Builder encodes the grid, battery and PV limits as a
// linear program, a solver.Solver solves it, and Extract turns the primal
// values back into a model.DayResult. The Engine chains the days: the battery
// energy left at the end of one day is the starting charge of the next, so
// days are solved strictly in order.
//
// Sign convention: battery power is positive when the battery discharges into
// the house, and the state of charge follows
//
//	soc(h) = soc(h-1) - battery(h)   for h > 0
//	soc(0) = start-of-day charge
package optimize
