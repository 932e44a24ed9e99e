package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pior/wifimib"
	"github.com/pior/wifimib/internal/config"
	"github.com/pior/wifimib/internal/observability"
	"github.com/pior/wifimib/mib"
	"github.com/spf13/cobra"
)

type OperationType string

const (
	ReadHit   OperationType = "read-hit"
	ReadMiss  OperationType = "read-miss"
	WriteRead OperationType = "write-read"
	Counter64 OperationType = "counter64"
	All       OperationType = "all"
)

// Benchmarks write under PSIDs from here on.
const benchPSID0 uint16 = 0x4000

var allOperations = []OperationType{ReadHit, ReadMiss, WriteRead, Counter64}

type BenchmarkResult struct {
	Operation    OperationType
	Duration     time.Duration
	TotalOps     int64
	Successes    int64
	Failures     int64
	AvgLatency   time.Duration
	OpsPerSecond float64
	Correctness  bool
	ErrorMessage string
}

type benchOptions struct {
	configPath  string
	servers     []string
	pool        string
	operation   string
	duration    time.Duration
	concurrency int
	batch       int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &benchOptions{}

	cmd := &cobra.Command{
		Use:           "mib-bench",
		Short:         "Load firmware peers with MIB get and set traffic",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a TOML client config")
	flags.StringSliceVarP(&opts.servers, "server", "s", nil, "firmware peer address (repeatable)")
	flags.StringVar(&opts.pool, "pool", "", "connection pool: channel or puddle")
	flags.StringVarP(&opts.operation, "operation", "o", string(All), "read-hit, read-miss, write-read, counter64 or all")
	flags.DurationVarP(&opts.duration, "duration", "d", 5*time.Second, "duration of each benchmark")
	flags.IntVar(&opts.concurrency, "concurrency", 1, "number of concurrent workers")
	flags.IntVar(&opts.batch, "batch", 8, "keys per GET list in read-hit")
	return cmd
}

func runBench(cmd *cobra.Command, opts *benchOptions) error {
	cfg := config.DefaultClientConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadClientConfig(opts.configPath)
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("server") {
		cfg.Servers = opts.servers
	}
	if opts.pool != "" {
		cfg.Pool = opts.pool
	}
	if err := config.ValidateClientConfig(cfg); err != nil {
		return err
	}
	if opts.concurrency < 1 || opts.batch < 1 {
		return errors.New("concurrency and batch must be positive")
	}

	logger := observability.InitLogger("mib-bench", cfg.LogLevel)
	client, err := wifimib.NewClient(wifimib.NewStaticServers(cfg.Servers...), cfg.ClientOptions(&logger))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "MIB Benchmark Tool\n")
	fmt.Fprintf(out, "==================\n")
	fmt.Fprintf(out, "Operation: %s\n", opts.operation)
	fmt.Fprintf(out, "Duration: %v\n", opts.duration)
	fmt.Fprintf(out, "Concurrency: %d\n", opts.concurrency)
	fmt.Fprintf(out, "Servers: %v\n", cfg.Servers)
	fmt.Fprintf(out, "Pool: %s\n\n", cfg.Pool)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprint(out, "Testing connection...")
	if err := client.Ping(ctx); err != nil {
		fmt.Fprintf(out, " failed\n")
		return err
	}
	fmt.Fprintln(out, " success!")

	operations := []OperationType{OperationType(opts.operation)}
	if operations[0] == All {
		operations = allOperations
	}

	b := &bench{client: client, duration: opts.duration, concurrency: opts.concurrency, batch: opts.batch}
	for _, op := range operations {
		fmt.Fprintf(out, "\n--- Running %s benchmark ---\n", op)
		result, err := b.run(ctx, op)
		if err != nil {
			return err
		}
		printResult(out, result)
	}

	printStats(out, client)
	return nil
}

type bench struct {
	client      *wifimib.Client
	duration    time.Duration
	concurrency int
	batch       int
}

// opFunc performs one operation for a worker and reports whether the answer
// was the expected one.
type opFunc func(ctx context.Context, worker, n int) (correct bool, err error)

func (b *bench) run(ctx context.Context, op OperationType) (*BenchmarkResult, error) {
	var fn opFunc
	switch op {
	case ReadHit:
		var err error
		fn, err = b.readHit(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to seed entries: %w", err)
		}
	case ReadMiss:
		fn = b.readMiss
	case WriteRead:
		fn = b.writeRead
	case Counter64:
		fn = b.counter64
	default:
		return nil, fmt.Errorf("unknown operation: %s", op)
	}
	return b.measure(ctx, op, fn), nil
}

func (b *bench) measure(ctx context.Context, op OperationType, fn opFunc) *BenchmarkResult {
	result := &BenchmarkResult{Operation: op, Correctness: true}
	var totalOps, successes, failures, totalLatency atomic.Int64
	var mismatch sync.Once

	startTime := time.Now()
	var wg sync.WaitGroup

	for worker := range b.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for n := 0; time.Since(startTime) < b.duration; n++ {
				opStart := time.Now()
				correct, err := fn(ctx, worker, n)
				totalLatency.Add(int64(time.Since(opStart)))
				totalOps.Add(1)

				switch {
				case err != nil:
					failures.Add(1)
				case !correct:
					failures.Add(1)
					mismatch.Do(func() {
						result.Correctness = false
						result.ErrorMessage = fmt.Sprintf("unexpected value (worker %d, op %d)", worker, n)
					})
				default:
					successes.Add(1)
				}
			}
		}()
	}

	wg.Wait()

	result.Duration = time.Since(startTime)
	result.TotalOps = totalOps.Load()
	result.Successes = successes.Load()
	result.Failures = failures.Load()

	if result.TotalOps > 0 {
		result.AvgLatency = time.Duration(totalLatency.Load() / result.TotalOps)
		result.OpsPerSecond = float64(result.TotalOps) / result.Duration.Seconds()
	}
	return result
}

// readHit seeds one batch of entries and reads them back as a list.
func (b *bench) readHit(ctx context.Context) (opFunc, error) {
	keys := make([]mib.Key, b.batch)
	entries := make([]mib.Entry, b.batch)
	for i := range keys {
		keys[i] = mib.NewKey(benchPSID0, uint16(i+1))
		entries[i] = mib.Entry{Key: keys[i], Value: mib.UintValue(uint32(i))}
	}
	if err := b.client.SetList(ctx, entries...); err != nil {
		return nil, err
	}

	return func(ctx context.Context, worker, n int) (bool, error) {
		values, err := b.client.GetList(ctx, keys...)
		if err != nil {
			return false, err
		}
		for i, v := range values {
			if !v.Equal(entries[i].Value) {
				return false, nil
			}
		}
		return true, nil
	}, nil
}

func (b *bench) readMiss(ctx context.Context, worker, n int) (bool, error) {
	_, err := b.client.Get(ctx, mib.NewKey(benchPSID0+1, uint16(worker+1), uint16(n%0xFFFF+1)))
	if errors.Is(err, mib.ErrNotFound) {
		return true, nil
	}
	return false, err
}

func (b *bench) writeRead(ctx context.Context, worker, n int) (bool, error) {
	key := mib.NewKey(benchPSID0+2+uint16(worker%64), uint16(n%0xFFFF+1))
	value := mib.OctetsValue(fmt.Appendf(nil, "value-%d-%d", worker, n))

	if err := b.client.Set(ctx, key, value); err != nil {
		return false, err
	}
	got, err := b.client.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return got.Equal(value), nil
}

func (b *bench) counter64(ctx context.Context, worker, n int) (bool, error) {
	key := mib.NewKey(benchPSID0+0x100, uint16(worker+1))
	want := uint64(n)<<32 | uint64(worker)

	if err := b.client.SetUint64(ctx, key, want); err != nil {
		return false, err
	}
	got, err := b.client.GetUint64(ctx, key)
	if err != nil {
		return false, err
	}
	return got == want, nil
}

func printResult(out io.Writer, result *BenchmarkResult) {
	fmt.Fprintf(out, "Operation: %s\n", result.Operation)
	fmt.Fprintf(out, "Duration: %v\n", result.Duration)
	fmt.Fprintf(out, "Total Operations: %d\n", result.TotalOps)
	fmt.Fprintf(out, "Successes: %d\n", result.Successes)
	fmt.Fprintf(out, "Failures: %d\n", result.Failures)
	if result.TotalOps > 0 {
		fmt.Fprintf(out, "Success Rate: %.2f%%\n", float64(result.Successes)/float64(result.TotalOps)*100)
		fmt.Fprintf(out, "Ops/sec: %.2f\n", result.OpsPerSecond)
		fmt.Fprintf(out, "Avg Latency: %v\n", result.AvgLatency)
	}
	fmt.Fprintf(out, "Correctness: %t\n", result.Correctness)
	if result.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", result.ErrorMessage)
	}
}

func printStats(out io.Writer, client *wifimib.Client) {
	stats := client.Stats()
	fmt.Fprintf(out, "\n--- Client ---\n")
	fmt.Fprintf(out, "GET frames: %d (%d keys)\n", stats.GetRequests, stats.GetKeys)
	fmt.Fprintf(out, "SET frames: %d (%d entries)\n", stats.SetRequests, stats.SetEntries)
	fmt.Fprintf(out, "Refused: %d, errors: %d\n", stats.Refused, stats.Errors)

	for _, ps := range client.AllPoolStats() {
		fmt.Fprintf(out, "%s: created=%d destroyed=%d waits=%d breaker=%s\n",
			ps.Addr,
			ps.PoolStats.CreatedConns,
			ps.PoolStats.DestroyedConns,
			ps.PoolStats.AcquireWaitCount,
			ps.CircuitBreakerState,
		)
	}
}
