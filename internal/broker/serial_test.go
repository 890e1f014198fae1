package broker_test

import (
	"sync"
	"testing"

	"github.com/myrjola/nai/internal/broker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerial(t *testing.T) {
	type testCase struct {
		name     string
		testFunc func(t *testing.T)
	}
	tests := []testCase{
		{
			name: "consumer receives payloads in publish order",
			testFunc: func(t *testing.T) {
				received := make(chan string, 3)
				b := broker.NewSerial(func(s string) { received <- s })
				go b.Start()
				t.Cleanup(b.Stop)

				for _, s := range []string{"a", "b", "c"} {
					require.True(t, b.Publish(s))
				}
				require.Equal(t, "a", <-received)
				require.Equal(t, "b", <-received)
				require.Equal(t, "c", <-received)
			},
		},
		{
			name: "consumer never runs concurrently",
			testFunc: func(t *testing.T) {
				var (
					running int
					maxSeen int
					total   int
					mu      sync.Mutex
				)
				done := make(chan struct{})
				const producers = 20
				b := broker.NewSerial(func(int) {
					mu.Lock()
					running++
					maxSeen = max(maxSeen, running)
					mu.Unlock()

					mu.Lock()
					running--
					total++
					if total == producers {
						close(done)
					}
					mu.Unlock()
				})
				go b.Start()
				t.Cleanup(b.Stop)

				var wg sync.WaitGroup
				for i := range producers {
					wg.Add(1)
					go func() {
						defer wg.Done()
						assert.True(t, b.Publish(i))
					}()
				}
				wg.Wait()
				<-done
				require.Equal(t, 1, maxSeen)
			},
		},
		{
			name: "publish after stop does not block",
			testFunc: func(t *testing.T) {
				b := broker.NewSerial(func(int) {
					t.Error("consumer called after stop")
				})
				b.Stop()
				b.Stop()
				require.False(t, b.Publish(1))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
