package webzip

import "github.com/sirupsen/logrus"

func (arc *Archiver) logEntry(req *Request) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if req != nil {
		entry = entry.WithFields(logrus.Fields{
			"request": req.ID,
			"url":     req.RawURL,
		})
	}
	return entry
}

func (arc *Archiver) logf(req *Request, format string, args ...interface{}) {
	if arc.EnableLog {
		arc.logEntry(req).Infof(format, args...)
	}
}

func (arc *Archiver) warnf(req *Request, format string, args ...interface{}) {
	if arc.EnableLog {
		arc.logEntry(req).Warnf(format, args...)
	}
}

func (arc *Archiver) errorf(err error, format string, args ...interface{}) {
	if arc.EnableLog {
		logrus.WithError(err).Errorf(format, args...)
	}
}

func (arc *Archiver) methodFailed(req *Request, method Method, err error) {
	if arc.EnableLog {
		arc.logEntry(req).WithField("method", method.Name()).WithError(err).Warn("method failed")
	}
}

// logURL logs every outgoing request, only in verbose mode.
func (arc *Archiver) logURL(req *Request, url string) {
	if arc.EnableLog && arc.EnableVerboseLog {
		arc.logEntry(req).Infof("GET %s", stripQuery(url))
	}
}
