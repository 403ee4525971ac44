package main

import (
	"fmt"
	"time"
)

// sessionProgress reports the stages of driving one uploaded file
// through the Analysis Core — upload, query, close — keyed by the
// same identifier (filename, then file/session id) the rest of
// corecubectl uses to address that Session.
type sessionProgress struct {
	subject string
}

func newSessionProgress(subject string) *sessionProgress {
	return &sessionProgress{subject: subject}
}

// rename switches the subject once a file id/session id is known,
// e.g. after Upload returns.
func (p *sessionProgress) rename(subject string) {
	p.subject = subject
}

// stage announces a stage starting and returns a closer to report its
// outcome, so callers can defer-free it as `stop := p.stage("query"); ...; stop(err)`.
func (p *sessionProgress) stage(name string) func(err error) {
	start := time.Now()
	fmt.Printf("%s: %s\n", p.subject, name)
	return func(err error) {
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			fmt.Printf("%s: %s failed after %s: %v\n", p.subject, name, elapsed, err)
			return
		}
		fmt.Printf("%s: %s done (%s)\n", p.subject, name, elapsed)
	}
}

// ingestTally accumulates per-dataset outcomes while corecubectl
// ingests a directory of files, and prints a closing summary in the
// vocabulary of datasets rather than generic "tasks".
type ingestTally struct {
	start    time.Time
	uploaded []string
	failed   map[string]error
}

func newIngestTally() *ingestTally {
	return &ingestTally{start: time.Now(), failed: make(map[string]error)}
}

func (t *ingestTally) recordUploaded(datasetName string) {
	t.uploaded = append(t.uploaded, datasetName)
	fmt.Printf("%s: uploaded\n", datasetName)
}

func (t *ingestTally) recordFailed(datasetName string, err error) {
	t.failed[datasetName] = err
	fmt.Printf("%s: failed: %v\n", datasetName, err)
}

func (t *ingestTally) summary() string {
	elapsed := time.Since(t.start).Round(time.Millisecond)
	out := fmt.Sprintf("\ningested %d dataset(s), %d failed, in %s\n", len(t.uploaded), len(t.failed), elapsed)
	for name, err := range t.failed {
		out += fmt.Sprintf("  - %s: %v\n", name, err)
	}
	return out
}
