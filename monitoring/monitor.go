// Package monitoring turns a running simulation into an HTTP server that can
// pause the engine, inspect components, and read or write the register file.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unsafe"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/horizon0210/PID-Controller-With-FPGA/regfile"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// RegisterAccess is the word interface of a register file.
type RegisterAccess interface {
	Read32(off regfile.Offset) (uint32, error)
	Write32(off regfile.Offset, v uint32) error
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	engine      sim.Engine
	registers   RegisterAccess
	components  []sim.Named
	buffers     []sim.Buffer
	portNumber  int
	openBrowser bool
	listener    net.Listener

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor in the default browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterRegisters sets the register file exposed by the monitor.
func (m *Monitor) RegisterRegisters(r RegisterAccess) {
	m.registers = r
}

// RegisterComponent register a component to be monitored.
func (m *Monitor) RegisterComponent(c sim.Named) {
	m.components = append(m.components, c)

	m.registerBuffers(c)
}

func (m *Monitor) registerBuffers(c any) {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}

	v = v.Elem()
	bufferType := reflect.TypeOf((*sim.Buffer)(nil)).Elem()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Type() != bufferType || field.IsNil() {
			continue
		}

		fieldRef := reflect.NewAt(
			field.Type(),
			unsafe.Pointer(field.UnsafeAddr()),
		).Elem().Interface().(sim.Buffer)
		m.buffers = append(m.buffers, fieldRef)
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the routes served by the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/buffers", m.listBuffers)
	r.HandleFunc("/api/registers", m.listRegisters).Methods(http.MethodGet)
	r.HandleFunc("/api/register/{name}", m.readRegister).
		Methods(http.MethodGet)
	r.HandleFunc("/api/register/{name}", m.writeRegister).
		Methods(http.MethodPut)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	r := m.Router()

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener

	url := fmt.Sprintf("http://localhost:%d", m.Port())
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, r)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			log.Panic(err)
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "cannot open browser: %v\n", err)
		}
	}
}

// Port returns the port the server listens on, or 0 before StartServer.
func (m *Monitor) Port() int {
	if m.listener == nil {
		return 0
	}

	return m.listener.Addr().(*net.TCPAddr).Port
}

// StopServer closes the listener.
func (m *Monitor) StopServer() error {
	if m.listener == nil {
		return nil
	}

	return m.listener.Close()
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type bufferRsp struct {
	Buffer string `json:"buffer"`
	Level  int    `json:"level"`
	Cap    int    `json:"cap"`
}

func (m *Monitor) listBuffers(w http.ResponseWriter, r *http.Request) {
	sortMethod := r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		http.Error(w, fmt.Sprintf(
			"Invalid sort method: %s. Allowed values are `level` and `percent`",
			sortMethod), http.StatusBadRequest)

		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	offset, err := queryInt(r, "offset")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rsp := []bufferRsp{}
	for _, b := range m.sortAndSelectBuffers(sortMethod, limit, offset) {
		rsp = append(rsp, bufferRsp{b.Name(), b.Size(), b.Capacity()})
	}

	writeJSON(w, rsp)
}

func queryInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}

	return n, nil
}

func bufferPercent(b sim.Buffer) float64 {
	return float64(b.Size()) / float64(b.Capacity())
}

// sortAndSelectBuffers returns at most limit buffers starting at offset. A
// zero limit selects every remaining buffer.
func (m *Monitor) sortAndSelectBuffers(
	sortMethod string,
	limit, offset int,
) []sim.Buffer {
	sorted := make([]sim.Buffer, len(m.buffers))
	copy(sorted, m.buffers)

	byLevel := sortMethod == "level"
	sort.SliceStable(sorted, func(i, j int) bool {
		sizeI, sizeJ := sorted[i].Size(), sorted[j].Size()
		percentI, percentJ := bufferPercent(sorted[i]), bufferPercent(sorted[j])

		if byLevel && sizeI != sizeJ {
			return sizeI > sizeJ
		}

		if percentI != percentJ {
			return percentI > percentJ
		}

		return sizeI > sizeJ
	})

	if offset > len(sorted) {
		offset = len(sorted)
	}

	end := len(sorted)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return sorted[offset:end]
}

type registerRsp struct {
	Name     string `json:"name"`
	Offset   string `json:"offset"`
	ReadOnly bool   `json:"read_only"`
	Bits     string `json:"bits"`
	Value    string `json:"value"`
}

// registerWriteReq carries either a decimal value or a raw bit pattern.
type registerWriteReq struct {
	Value string `json:"value,omitempty"`
	Bits  string `json:"bits,omitempty"`
}

func (m *Monitor) describeRegister(reg regfile.Register) (registerRsp, error) {
	v, err := m.registers.Read32(reg.Offset)
	if err != nil {
		return registerRsp{}, err
	}

	return registerRsp{
		Name:     reg.Name,
		Offset:   fmt.Sprintf("0x%02X", uint32(reg.Offset)),
		ReadOnly: reg.ReadOnly,
		Bits:     fmt.Sprintf("0x%08X", v),
		Value:    formatRegister(reg, v),
	}, nil
}

func formatRegister(reg regfile.Register, v uint32) string {
	switch {
	case reg.Float:
		return strconv.FormatFloat(float64(math.Float32frombits(v)), 'g', -1, 32)
	case reg.Offset == regfile.OffStatus:
		return fmt.Sprintf("count=%d forward=%t",
			regfile.StatusCount(v), regfile.StatusForward(v))
	case reg.Offset == regfile.OffPWM:
		return fmt.Sprintf("compare=%d forward=%t",
			v&regfile.PWMCompareMask, v&regfile.PWMForwardBit != 0)
	default:
		return strconv.FormatUint(uint64(v), 10)
	}
}

func (m *Monitor) listRegisters(w http.ResponseWriter, _ *http.Request) {
	if !m.registersOr404(w) {
		return
	}

	rsp := make([]registerRsp, 0, len(regfile.Registers()))
	for _, reg := range regfile.Registers() {
		d, err := m.describeRegister(reg)
		dieOnErr(err)

		rsp = append(rsp, d)
	}

	writeJSON(w, rsp)
}

func (m *Monitor) readRegister(w http.ResponseWriter, r *http.Request) {
	reg, ok := m.findRegisterOr404(w, mux.Vars(r)["name"])
	if !ok {
		return
	}

	d, err := m.describeRegister(reg)
	dieOnErr(err)

	writeJSON(w, d)
}

func (m *Monitor) writeRegister(w http.ResponseWriter, r *http.Request) {
	reg, ok := m.findRegisterOr404(w, mux.Vars(r)["name"])
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	dieOnErr(err)

	req := registerWriteReq{}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bits, err := parseRegisterWrite(reg, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = m.registers.Write32(reg.Offset, bits)
	if errors.Is(err, regfile.ErrReadOnly) {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	dieOnErr(err)

	d, err := m.describeRegister(reg)
	dieOnErr(err)

	writeJSON(w, d)
}

func parseRegisterWrite(
	reg regfile.Register,
	req registerWriteReq,
) (uint32, error) {
	switch {
	case req.Bits != "":
		v, err := strconv.ParseUint(req.Bits, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid bits %q", req.Bits)
		}

		return uint32(v), nil
	case req.Value != "" && reg.Float:
		v, err := strconv.ParseFloat(req.Value, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q", req.Value)
		}

		return math.Float32bits(float32(v)), nil
	case req.Value != "":
		v, err := strconv.ParseUint(req.Value, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q", req.Value)
		}

		return uint32(v), nil
	default:
		return 0, errors.New("either value or bits is required")
	}
}

func (m *Monitor) registersOr404(w http.ResponseWriter) bool {
	if m.registers == nil {
		http.Error(w, "No register file", http.StatusNotFound)
		return false
	}

	return true
}

func (m *Monitor) findRegisterOr404(
	w http.ResponseWriter,
	name string,
) (regfile.Register, bool) {
	if !m.registersOr404(w) {
		return regfile.Register{}, false
	}

	reg, ok := regfile.Lookup(name)
	if !ok {
		http.Error(w, "Register not found", http.StatusNotFound)
	}

	return reg, ok
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Named {
	var component sim.Named
	for _, c := range m.components {
		if c.Name() == name {
			component = c
		}
	}

	if component == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Component not found"))
		dieOnErr(err)
	}

	return component
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
