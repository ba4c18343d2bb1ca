// Package monitoring turns a running coupled simulation into a small web
// server for external observation.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/cosimlab/tandem/cplscheme"
)

// A Monitor exposes the state of registered coupling schemes over HTTP.
type Monitor struct {
	portNumber  int
	openBrowser bool

	schemesLock sync.Mutex
	schemes     map[string]cplscheme.CouplingScheme
}

// NewMonitor creates a Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		schemes: make(map[string]cplscheme.CouplingScheme),
	}
}

// WithPortNumber sets the port number of the monitoring server.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitoring page in a browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterScheme registers the scheme of one local participant.
func (m *Monitor) RegisterScheme(
	participant string,
	s cplscheme.CouplingScheme,
) {
	m.schemesLock.Lock()
	defer m.schemesLock.Unlock()

	if _, found := m.schemes[participant]; found {
		panic("participant " + participant + " already registered")
	}

	m.schemes[participant] = s
}

// StartServer starts the monitoring server.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/participants", m.listParticipants)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/scheme/{name}", m.schemeDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring coupled run with %s\n", url)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	if m.openBrowser {
		err := browser.OpenURL(url + "/api/participants")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %s\n", err)
		}
	}
}

func (m *Monitor) participantNames() []string {
	m.schemesLock.Lock()
	defer m.schemesLock.Unlock()

	names := make([]string, 0, len(m.schemes))
	for name := range m.schemes {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (m *Monitor) findScheme(name string) cplscheme.CouplingScheme {
	m.schemesLock.Lock()
	defer m.schemesLock.Unlock()

	return m.schemes[name]
}

func (m *Monitor) listParticipants(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.participantNames())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type nowRsp struct {
	Participant string  `json:"participant"`
	Time        float64 `json:"time"`
	TimeWindows int     `json:"time_windows"`
	Ongoing     bool    `json:"ongoing"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	rsp := []nowRsp{}

	for _, name := range m.participantNames() {
		s := m.findScheme(name)
		rsp = append(rsp, nowRsp{
			Participant: name,
			Time:        s.Time(),
			TimeWindows: s.Timesteps(),
			Ongoing:     s.IsCouplingOngoing(),
		})
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) schemeDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s := m.findScheme(name)
	if s == nil {
		w.WriteHeader(404)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(s)
	serializer.SetMaxDepth(2)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
