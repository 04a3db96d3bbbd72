// Package instrument holds the beamline models an image collection refers
// to: the incident beam, the goniometer and the rotation scan. The
// collection layer treats them as opaque shared references; the types here
// carry exactly the operations it calls, plus tolerant equality for
// comparing experimental setups.
package instrument
