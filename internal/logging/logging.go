// Package logging provides the single logrus entry point shared by every
// component package, so log lines carry a consistent "component" field
// instead of ad-hoc prefixes.
package logging

import "github.com/sirupsen/logrus"

// For mirrors fs.Debugf(f, ...)'s convention in the teacher's mediavfs
// backend of tagging every log line with the emitting component.
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}
