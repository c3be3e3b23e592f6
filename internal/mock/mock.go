// Package mock generates deterministic ansible-playbook transcripts.
package mock

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/newhook/playlog/internal/logparser"
)

// Options shape a generated run. Zero values select small defaults.
type Options struct {
	Hosts        int
	Plays        int
	TasksPerPlay int
	// Serial splits each play into batches of this many hosts. Zero runs all hosts at once.
	Serial int
	// FailureRate is the chance that a task fails on a host.
	FailureRate float64
	Timestamped bool
	// Start is the time of the first timestamped line.
	Start time.Time
}

func (o Options) withDefaults() Options {
	if o.Hosts <= 0 {
		o.Hosts = 3
	}
	if o.Plays <= 0 {
		o.Plays = 2
	}
	if o.TasksPerPlay <= 0 {
		o.TasksPerPlay = 4
	}
	if o.FailureRate < 0 {
		o.FailureRate = 0
	}
	if o.Start.IsZero() {
		o.Start = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	}
	return o
}

// Run is a generated transcript together with what a parser should recover from it.
type Run struct {
	Title   string
	Content string
	// Hosts lists host names in recap order.
	Hosts []string
	// Counts holds the recap totals per host.
	Counts map[string]logparser.Counts
	// Plays lists distinct play names in order.
	Plays []string
}

// Generator produces runs from a seeded source.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator. The same seed always yields the same runs.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate builds a run described by opts using the generator's source.
func (g *Generator) Generate(opts Options) Run {
	opts = opts.withDefaults()
	w := &writer{timestamped: opts.Timestamped, clock: opts.Start, rng: g.rng}

	run := Run{
		Title:  pick(g.rng, runTitles),
		Hosts:  g.hostnames(opts.Hosts),
		Counts: make(map[string]logparser.Counts),
	}
	failed := make(map[string]bool)

	for p := 0; p < opts.Plays; p++ {
		play := fmt.Sprintf("%s (%d)", pick(g.rng, playNames), p+1)
		run.Plays = append(run.Plays, play)
		tasks := g.taskList(opts.TasksPerPlay)

		for _, batch := range batches(run.Hosts, opts.Serial) {
			w.blank()
			w.header("PLAY", play)
			for _, task := range tasks {
				w.blank()
				w.header("TASK", task)
				for _, host := range batch {
					if failed[host] {
						continue
					}
					g.result(w, &run, host, task, opts.FailureRate, failed)
				}
			}
		}
	}

	w.blank()
	w.header("PLAY RECAP", "")
	for _, host := range run.Hosts {
		c := run.Counts[host]
		w.line(fmt.Sprintf("%-26s : ok=%-4d changed=%-4d unreachable=%-4d failed=%-4d skipped=%-4d rescued=%-4d ignored=%d",
			host, c.OK, c.Changed, c.Unreachable, c.Failed, c.Skipped, c.Rescued, c.Ignored))
	}
	w.blank()

	run.Content = w.String()
	return run
}

// result writes one host's outcome for a task and tallies it.
func (g *Generator) result(w *writer, run *Run, host, task string, failureRate float64, failed map[string]bool) {
	c := run.Counts[host]
	defer func() { run.Counts[host] = c }()

	if task == gatherFacts {
		c.OK++
		w.line(fmt.Sprintf("ok: [%s]", host))
		return
	}

	roll := g.rng.Float64()
	switch {
	case roll < failureRate:
		failed[host] = true
		msg := pick(g.rng, failureMessages)
		if g.rng.IntN(10) == 0 {
			c.Unreachable++
			w.line(fmt.Sprintf(`fatal: [%s]: UNREACHABLE! => {"changed": false, "msg": %q, "unreachable": true}`, host, msg))
			return
		}
		c.Failed++
		if g.rng.IntN(2) == 0 {
			w.line(fmt.Sprintf(`fatal: [%s]: FAILED! => {"changed": false, "msg": %q}`, host, msg))
			return
		}
		w.line(fmt.Sprintf("fatal: [%s]: FAILED! => {", host))
		w.line(`    "changed": false,`)
		w.line(fmt.Sprintf(`    "msg": %q,`, msg))
		w.line(fmt.Sprintf(`    "rc": %d`, 1+g.rng.IntN(127)))
		w.line("}")
	case roll < failureRate+0.15:
		c.Skipped++
		w.line(fmt.Sprintf("skipping: [%s]", host))
	case roll < failureRate+0.45:
		c.OK++
		c.Changed++
		w.line(fmt.Sprintf("changed: [%s]", host))
	default:
		c.OK++
		w.line(fmt.Sprintf("ok: [%s]", host))
	}
}

const gatherFacts = "Gathering Facts"

func (g *Generator) taskList(n int) []string {
	tasks := []string{gatherFacts}
	for len(tasks) < n {
		tasks = append(tasks, pick(g.rng, taskNames))
	}
	return tasks
}

func (g *Generator) hostnames(n int) []string {
	// The sequence number keeps names unique.
	hosts := make([]string, n)
	for i := range hosts {
		hosts[i] = fmt.Sprintf("%s-%s-%02d.%s", pick(g.rng, services), pick(g.rng, environments), i+1, pick(g.rng, locations))
	}
	return hosts
}

func batches(hosts []string, size int) [][]string {
	if size <= 0 || size >= len(hosts) {
		return [][]string{hosts}
	}
	var out [][]string
	for start := 0; start < len(hosts); start += size {
		out = append(out, hosts[start:min(start+size, len(hosts))])
	}
	return out
}

func pick[T any](rng *rand.Rand, pool []T) T {
	return pool[rng.IntN(len(pool))]
}

// writer renders transcript lines, optionally with log_path timestamps.
type writer struct {
	b           strings.Builder
	timestamped bool
	clock       time.Time
	rng         *rand.Rand
}

func (w *writer) header(kind, name string) {
	text := kind
	if name != "" {
		text += " [" + name + "]"
	}
	w.line(text + " " + strings.Repeat("*", max(3, 79-len(text))))
}

func (w *writer) blank() {
	w.line("")
}

func (w *writer) line(s string) {
	if w.timestamped {
		w.clock = w.clock.Add(time.Duration(w.rng.IntN(1500)) * time.Millisecond)
		fmt.Fprintf(&w.b, "%s p=4242 u=deploy n=ansible | %s\n", w.clock.Format(logparser.TimestampLayout), s)
		return
	}
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *writer) String() string {
	return w.b.String()
}
