package taps_test

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/math-2025/protected-geo/obfuscate"
	"github.com/math-2025/protected-geo/taps"
)

func ExampleDirectoryWatcherTap() {
	key, err := obfuscate.NewKey("commander")
	if err != nil {
		log.Fatal(err)
	}

	tap, err := taps.NewDirectoryWatcherTap("inbox", "outbox", key, taps.WatcherOptions{
		Options: taps.Options{
			Mode:           obfuscate.Encode,
			NotifyErrors:   true,
			ReportProgress: true,
		},
		PollingInterval: 500 * time.Millisecond,
	})
	if err != nil {
		log.Fatal(err)
	}

	engine := obfuscate.NewEngine(4, false, nil, tap)
	wg := &sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range tap.Errors() {
			fmt.Println("Error: ", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for r := range tap.Progress() {
			fmt.Printf("%s > %s %s\n", r.Input.Name, r.Output.Name, r.Status)
		}
	}()

	engine.Start()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	engine.Stop()
	wg.Wait()
}
