// Package schedule defines Function and Schedule, the pure-definition and
// scheduling-metadata pair package lower reads when building a realization.
// The front end that constructs these is out of scope; this package is the
// contract surface it must produce, plus the schedule-directive builders,
// which are the only front-end-visible API this module implements directly.
package schedule
