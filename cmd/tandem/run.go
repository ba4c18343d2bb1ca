package main

import (
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cosimlab/tandem/action"
	"github.com/cosimlab/tandem/cplscheme"
	"github.com/cosimlab/tandem/cplscheme/measure"
	"github.com/cosimlab/tandem/datarecording"
	"github.com/cosimlab/tandem/m2n"
	"github.com/cosimlab/tandem/mapping"
	"github.com/cosimlab/tandem/mesh"
	"github.com/cosimlab/tandem/monitoring"
	"github.com/cosimlab/tandem/participant"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run demo solvers coupled in-process.",
	Long: `Run demo solvers coupled in-process. With two participants the ` +
		`serial (staggered) scheme is used; with more, the star scheme with ` +
		`the first participant as controller.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")

		cfg := DefaultRunConfig()
		if configPath != "" {
			var err error
			cfg, err = LoadRunConfig(configPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
		}

		runCoupledDemo(cfg)
	},
}

func init() {
	runCmd.Flags().StringP("config", "c", "", "YAML run configuration")
	rootCmd.AddCommand(runCmd)
}

func runCoupledDemo(cfg RunConfig) {
	var recorder datarecording.DataRecorder
	if cfg.RecordPath != "" {
		recorder = datarecording.New(cfg.RecordPath)
		defer recorder.Close()
	}

	var monitor *monitoring.Monitor
	if cfg.Monitor {
		monitor = monitoring.NewMonitor()
		if port := os.Getenv("TANDEM_MONITOR_PORT"); port != "" {
			n, err := strconv.Atoi(port)
			if err != nil {
				logrus.Fatalf("invalid TANDEM_MONITOR_PORT %q: %v", port, err)
			}
			monitor.WithPortNumber(n)
		}
	}

	var participants []*participant.Participant
	if len(cfg.Participants) == 2 {
		participants = buildSerialDemo(cfg, recorder)
	} else {
		participants = buildStarDemo(cfg, recorder)
	}

	if monitor != nil {
		for _, p := range participants {
			monitor.RegisterScheme(p.Name(), p.Scheme())
		}
		monitor.StartServer()
	}

	var wg sync.WaitGroup
	errs := make([]error, len(participants))

	for i, p := range participants {
		wg.Add(1)
		go func(i int, p *participant.Participant) {
			defer wg.Done()
			errs[i] = runSolverLoop(p)
		}(i, p)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			logrus.Fatalf("participant %s failed: %v",
				participants[i].Name(), err)
		}
	}

	for _, p := range participants {
		s := p.Scheme()
		logrus.WithFields(logrus.Fields{
			"participant": p.Name(),
			"time":        s.Time(),
			"timeWindows": s.Timesteps(),
		}).Info("coupled run finished")
	}
}

// runSolverLoop is the generic driver loop: ask the scheme for the largest
// admissible dt, solve, advance, fulfill checkpoint obligations.
func runSolverLoop(p *participant.Participant) error {
	err := p.Initialize(0, 0)
	if err != nil {
		return err
	}

	if p.IsActionRequired(cplscheme.WriteIterationCheckpoint) {
		p.FulfillAction(cplscheme.WriteIterationCheckpoint)
	}

	for p.Scheme().IsCouplingOngoing() {
		dt := p.Scheme().NextTimestepMaxLength()

		_, err := p.Advance(dt)
		if err != nil {
			return err
		}

		if p.IsActionRequired(cplscheme.WriteIterationCheckpoint) {
			p.FulfillAction(cplscheme.WriteIterationCheckpoint)
		}
	}

	return p.Finalize()
}

// observerFor creates the run observer of one participant. The recorder is
// shared between the concurrently running participants and serializes
// internally.
func observerFor(
	recorder datarecording.DataRecorder,
	name string,
) cplscheme.RunObserver {
	if recorder == nil {
		return nil
	}

	return datarecording.NewRunRecorder(recorder, name)
}

// newSolveAction wraps a demo solver kernel as an always-prior action, so it
// recomputes its send data before every exchange.
func newSolveAction(solve func(dt float64)) action.Action {
	return action.NewFuncAction(
		action.TimingAlwaysPrior, 0, mapping.RequirementUndefined,
		func(_, dt, _, _ float64) error {
			solve(dt)
			return nil
		})
}

func demoMode(cfg RunConfig) (cplscheme.CouplingMode, int) {
	if cfg.Mode == "implicit" {
		return cplscheme.Implicit, cfg.MaxIterations
	}

	return cplscheme.Explicit, 1
}

// buildSerialDemo wires a two-participant staggered run: the first
// participant sends forces, the second responds with displacements.
func buildSerialDemo(
	cfg RunConfig,
	recorder datarecording.DataRecorder,
) []*participant.Participant {
	first, second := cfg.Participants[0], cfg.Participants[1]
	mode, maxIterations := demoMode(cfg)

	commA, commB := m2n.NewInProcessPair(first, second)
	connect(commA, commB)

	build := func(
		local string,
		comm m2n.Communicator,
	) (*participant.Participant, *mesh.Data, *mesh.Data) {
		reg := mesh.NewRegistry()
		iface := reg.CreateMesh("Interface", cfg.Vertices)
		force := reg.CreateData(iface, "Force", 1)
		displacement := reg.CreateData(iface, "Displacement", 1)

		b := cplscheme.MakeSerialSchemeBuilder().
			WithMaxTime(cfg.MaxTime).
			WithMaxTimeWindows(cfg.MaxTimeWindows).
			WithTimeWindowSize(cfg.TimeWindowSize).
			WithValidDigits(cfg.ValidDigits).
			WithFirstParticipant(first).
			WithSecondParticipant(second).
			WithLocalParticipant(local).
			WithM2N(comm).
			WithCouplingMode(mode).
			WithMaxIterations(maxIterations).
			WithExtrapolationDegree(cfg.ExtrapolationDegree)

		if o := observerFor(recorder, local); o != nil {
			b = b.WithObserver(o)
		}

		if mode == cplscheme.Implicit && local == second {
			b = b.WithConvergenceMeasure(displacement.ID(),
				measure.NewAbsoluteMeasure(cfg.ConvergenceLimit))
		}

		scheme := b.Build()

		if local == first {
			scheme.AddDataToSend(force, iface, false)
			scheme.AddDataToReceive(displacement, iface, false)
		} else {
			scheme.AddDataToReceive(force, iface, false)
			scheme.AddDataToSend(displacement, iface, false)
		}

		p := participant.NewParticipant(local, scheme, reg)

		return p, force, displacement
	}

	fluid, fForce, fDisplacement := build(first, commA)
	registerFluidSolver(fluid, fForce, fDisplacement)

	structure, sForce, sDisplacement := build(second, commB)
	registerStructureSolver(structure, sForce, sDisplacement, cfg.Relaxation)

	return []*participant.Participant{fluid, structure}
}

// registerFluidSolver computes boundary forces from the last received
// displacements before every exchange.
func registerFluidSolver(
	p *participant.Participant,
	force, displacement *mesh.Data,
) {
	s := p.Scheme()
	p.RegisterAction(newSolveAction(func(dt float64) {
		f := s.Values(force.ID())
		d := s.Values(displacement.ID())
		for i := range f {
			f[i] = 1.0 - 0.25*d[i]
		}
	}))
}

// registerStructureSolver responds with displacements proportional to the
// received forces, under-relaxed for stability.
func registerStructureSolver(
	p *participant.Participant,
	force, displacement *mesh.Data,
	relaxation float64,
) {
	s := p.Scheme()
	p.RegisterAction(newSolveAction(func(dt float64) {
		f := s.Values(force.ID())
		d := s.Values(displacement.ID())
		for i := range d {
			d[i] = d[i] + relaxation*(0.01*f[i]-d[i])
		}
	}))
}

// buildStarDemo wires one controller with N-1 satellites. Each satellite
// sends its state and receives a target; the controller averages all
// states.
func buildStarDemo(
	cfg RunConfig,
	recorder datarecording.DataRecorder,
) []*participant.Participant {
	controller := cfg.Participants[0]
	satellites := cfg.Participants[1:]
	mode, maxIterations := demoMode(cfg)

	centerComms := make([]m2n.Communicator, len(satellites))
	satelliteComms := make([]m2n.Communicator, len(satellites))
	for i, name := range satellites {
		centerComms[i], satelliteComms[i] = m2n.NewInProcessPair(
			controller, name)
		connect(centerComms[i], satelliteComms[i])
	}

	// Controller side.
	centerReg := mesh.NewRegistry()
	cb := cplscheme.MakeMultiSchemeBuilder().
		WithMaxTime(cfg.MaxTime).
		WithMaxTimeWindows(cfg.MaxTimeWindows).
		WithTimeWindowSize(cfg.TimeWindowSize).
		WithValidDigits(cfg.ValidDigits).
		WithLocalParticipant(controller).
		WithCouplingMode(mode).
		WithMaxIterations(maxIterations).
		AsController()
	for _, comm := range centerComms {
		cb = cb.WithM2N(comm)
	}
	if o := observerFor(recorder, controller); o != nil {
		cb = cb.WithObserver(o)
	}

	type starChannel struct {
		state  *mesh.Data
		target *mesh.Data
	}

	centerChannels := make([]starChannel, len(satellites))
	for i, name := range satellites {
		iface := centerReg.CreateMesh("Interface-"+name, cfg.Vertices)
		centerChannels[i] = starChannel{
			state:  centerReg.CreateData(iface, "State-"+name, 1),
			target: centerReg.CreateData(iface, "Target-"+name, 1),
		}
		if mode == cplscheme.Implicit {
			cb = cb.WithConvergenceMeasure(centerChannels[i].state.ID(),
				measure.NewAbsoluteMeasure(cfg.ConvergenceLimit))
		}
	}

	centerScheme := cb.Build()
	for i, name := range satellites {
		iface := centerReg.MeshByName("Interface-" + name)
		centerScheme.AddDataToReceive(centerChannels[i].state, iface, false, i)
		centerScheme.AddDataToSend(centerChannels[i].target, iface, false, i)
	}

	center := participant.NewParticipant(controller, centerScheme, centerReg)
	center.RegisterAction(newSolveAction(func(dt float64) {
		// Target for every satellite: the mean over all received states.
		for v := 0; v < cfg.Vertices; v++ {
			sum := 0.0
			for _, ch := range centerChannels {
				sum += centerScheme.Values(ch.state.ID())[v]
			}
			mean := sum / float64(len(centerChannels))
			for _, ch := range centerChannels {
				centerScheme.Values(ch.target.ID())[v] = mean
			}
		}
	}))

	participants := []*participant.Participant{center}

	// Satellite sides.
	for i, name := range satellites {
		reg := mesh.NewRegistry()
		iface := reg.CreateMesh("Interface", cfg.Vertices)
		state := reg.CreateData(iface, "State", 1)
		target := reg.CreateData(iface, "Target", 1)

		sb := cplscheme.MakeMultiSchemeBuilder().
			WithMaxTime(cfg.MaxTime).
			WithMaxTimeWindows(cfg.MaxTimeWindows).
			WithTimeWindowSize(cfg.TimeWindowSize).
			WithValidDigits(cfg.ValidDigits).
			WithLocalParticipant(name).
			WithCouplingMode(mode).
			WithMaxIterations(maxIterations).
			WithM2N(satelliteComms[i])
		if o := observerFor(recorder, name); o != nil {
			sb = sb.WithObserver(o)
		}

		scheme := sb.Build()
		scheme.AddDataToSend(state, iface, false, 0)
		scheme.AddDataToReceive(target, iface, false, 0)

		p := participant.NewParticipant(name, scheme, reg)

		offset := float64(i + 1)
		relaxation := cfg.Relaxation
		p.RegisterAction(newSolveAction(func(dt float64) {
			st := scheme.Values(state.ID())
			tg := scheme.Values(target.ID())
			for v := range st {
				if st[v] == 0 {
					st[v] = offset
				}
				st[v] = st[v] + relaxation*(tg[v]-st[v])
			}
		}))

		participants = append(participants, p)
	}

	return participants
}

func connect(a, b m2n.Communicator) {
	a.PrepareEstablishment()
	if err := a.ConnectPrimary(); err != nil {
		logrus.Fatalf("cannot connect %s: %v", a.LocalName(), err)
	}
	if err := b.ConnectSecondary(); err != nil {
		logrus.Fatalf("cannot connect %s: %v", b.LocalName(), err)
	}
	a.CleanupEstablishment()
}
