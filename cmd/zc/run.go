package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zctools/zc/compiler"
	"github.com/zctools/zc/deploy"
	"github.com/zctools/zc/dnsutil"
	"github.com/zctools/zc/handoff"
	"github.com/zctools/zc/log"
	"github.com/zctools/zc/vcs"
	"github.com/zctools/zc/zone"
)

// fileOpener reads input files straight off the file system, for runs not driven by a
// commit.
type fileOpener struct{}

func (fileOpener) Open(name string) (string, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Run executes whichever mode survived validation. Every failure path removes any
// temporary files the run created before returning.
func (t *zc) Run() error {
	log.Detailf("%s %s starting", programName, Version)

	if len(t.cfg.confirmToken) > 0 {
		return t.confirm()
	}

	return t.compileAndInstall()
}

// confirm is the consumer side of the handshake: deliver the token and get out of the
// way. The producer does all the installing.
func (t *zc) confirm() error {
	err := handoff.Confirm(t.cfg.outputDir, t.cfg.pipeName, t.cfg.confirmToken)
	if err != nil {
		return err
	}
	log.Infof("confirmed transaction '%s'", t.cfg.confirmToken)

	return nil
}

func (t *zc) compileAndInstall() error {
	var opener compiler.Opener = fileOpener{}
	var token string

	if len(t.cfg.commitRev) > 0 {
		repo, err := vcs.Open(t.cfg.gitDir)
		if err != nil {
			return err
		}
		commit, err := repo.ResolveCommit(t.cfg.commitRev)
		if err != nil {
			return err
		}
		opener = commit.Opener()
		token = commit.Hash()
		log.Detailf("compiling from commit %s", token)

		skip, err := t.nothingToDo(repo, commit)
		if err != nil || skip {
			return err
		}
	}

	// One serial, one reverse registry, one coordinator for the whole run however
	// many inputs there are.
	serial := time.Now().Unix()
	reg := zone.NewRegistry()
	var forwards []*zone.Forward
	seen := make(map[string]string) // origin -> the input which produced it
	for _, name := range t.cfg.inputs {
		fwd, err := compiler.Compile(opener, name, serial)
		if err != nil {
			return err
		}
		if prev, ok := seen[fwd.Origin()]; ok {
			return fmt.Errorf("zone '%s' is produced by both '%s' and '%s'",
				fwd.Origin(), prev, name)
		}
		seen[fwd.Origin()] = name
		if err = reg.Synthesize(fwd); err != nil {
			return err
		}
		forwards = append(forwards, fwd)
		log.Detailf("compiled %s from %s", fwd.Origin(), name)
	}

	// Report what the run synthesized. A declared reverse zone whose name does not
	// decode as an address block can never receive a PTR record, which is almost
	// certainly an operator typo worth flagging.
	for _, rz := range reg.Zones() {
		block, err := dnsutil.ReverseBlock(rz.Origin())
		if err != nil {
			log.Warningf("reverse zone %s does not cover an address block: %s",
				rz.Origin(), err)
			continue
		}
		log.Detailf("%s covers %s with %d PTR records", rz.Origin(), block, rz.PTRCount())
	}

	if t.cfg.checkFlag {
		log.Infof("check passed: %d input(s) compile cleanly", len(forwards))
		return nil
	}

	cdr := deploy.NewCoordinator(t.cfg.outputDir)
	defer cdr.Abort() // A no-op once Finish has drained the mapping

	var p *handoff.Producer
	if t.cfg.waitFlag {
		p = handoff.NewProducer(t.cfg.outputDir, token)
		p.PipeName = t.cfg.pipeName
		p.Timeout = t.cfg.timeout
		p.PostCommand = t.cfg.onCommit
		err := p.Open() // Serializes overlapping transactions before staging
		if err != nil {
			return err
		}
		defer p.Close()
	}

	// Reverse zones land first, then the forwards, all still under staged names.
	for _, rz := range reg.Zones() {
		if err := cdr.Stage(rz.FileName(), rz.Text()); err != nil {
			return err
		}
	}
	for _, fwd := range forwards {
		if err := cdr.Stage(fwd.FileName(), fwd.Text()); err != nil {
			return err
		}
	}

	if p == nil {
		return cdr.Finish()
	}

	p.Staged(cdr)

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sig)
	go func() {
		s := <-sig
		log.Warningf("%s received, abandoning transaction '%s'", s, token)
		p.Interrupt()
	}()

	return p.Wait()
}

// nothingToDo applies --since: true when none of the named inputs changed between the
// two revisions. An unresolvable --since (such as the all-zeros revision an update
// hook sees on branch creation) is not fatal; everything compiles as if --since were
// absent.
func (t *zc) nothingToDo(repo *vcs.Repo, commit *vcs.Commit) (bool, error) {
	if len(t.cfg.sinceRev) == 0 {
		return false, nil
	}

	since, err := repo.ResolveCommit(t.cfg.sinceRev)
	if err != nil {
		warning(err, "--since revision not resolvable, compiling everything")
		return false, nil
	}
	changed, err := vcs.ChangedFiles(since, commit)
	if err != nil {
		return false, err
	}
	for _, in := range t.cfg.inputs {
		for _, ch := range changed {
			if in == ch {
				return false, nil
			}
		}
	}
	log.Infof("no zone sources changed since %s, nothing to do", t.cfg.sinceRev)

	return true, nil
}
