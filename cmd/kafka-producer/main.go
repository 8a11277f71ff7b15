package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/snake-leaderboard/internal/domain"
	"github.com/snake-leaderboard/internal/kafka"
)

// randomResult produces a plausible finished game for gameID
func randomResult(gameID int64) domain.GameResultMessage {
	food := int64(rand.Intn(60))
	duration := food*2 + int64(rand.Intn(90)) + 10
	return domain.GameResultMessage{
		GameID: gameID,
		UpdateGameRequest: domain.UpdateGameRequest{
			Score:           food*10 + int64(rand.Intn(100)),
			FoodEaten:       food,
			DurationSeconds: duration,
			Completed:       rand.Intn(100) < 30,
		},
	}
}

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "snake-game-results", "Kafka topic")
	firstGame := flag.Int64("first-game", 1, "First game ID to submit results for")
	lastGame := flag.Int64("last-game", 100, "Last game ID to submit results for")
	resultsPerSecond := flag.Int("rate", 50, "Results per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	once := flag.Bool("once", false, "Submit one result per game in the range and exit")
	flag.Parse()

	if *lastGame < *firstGame || *firstGame < 1 {
		log.Fatalf("Invalid game range %d..%d", *firstGame, *lastGame)
	}
	if *resultsPerSecond < 1 {
		log.Fatalf("Rate must be positive, got %d", *resultsPerSecond)
	}

	brokerList := strings.Split(*brokers, ",")

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("  Snake Game Result Producer")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Brokers:          %s\n", *brokers)
	fmt.Printf("  Topic:            %s\n", *topic)
	fmt.Printf("  Games:            %d..%d\n", *firstGame, *lastGame)
	fmt.Printf("  Results/sec:      %d\n", *resultsPerSecond)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	config := kafka.NewProducerConfig()
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}

	// Handle producer errors and successes
	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	done := make(chan struct{})
	shutdown := func(reason string) {
		fmt.Printf("\n%s\n", reason)
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("✓ Completed. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	send := func(result domain.GameResultMessage) {
		data, err := json.Marshal(result)
		if err != nil {
			log.Printf("Failed to marshal message: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(strconv.FormatInt(result.GameID, 10)),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
		}
	}

	if *once {
		for id := *firstGame; id <= *lastGame; id++ {
			send(randomResult(id))
		}
		shutdown(fmt.Sprintf("Submitted results for %d games", *lastGame-*firstGame+1))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(*resultsPerSecond))
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	span := *lastGame - *firstGame + 1
	var submitted int64

	for {
		select {
		case <-sigChan:
			shutdown("Shutting down...")
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				shutdown("Duration reached, shutting down...")
				return
			}
			send(randomResult(*firstGame + rand.Int63n(span)))
			atomic.AddInt64(&submitted, 1)

		case <-statsTicker.C:
			fmt.Printf("[%s] Submitted: %d | Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				atomic.LoadInt64(&submitted),
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
