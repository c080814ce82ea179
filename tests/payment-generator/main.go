package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type PaymentConfirmation struct {
	OrderID         string `json:"order_id"`
	StripePaymentID string `json:"stripe_payment_id"`
	ReceiptURL      string `json:"receipt_url"`
}

func randomConfirmation() PaymentConfirmation {
	return PaymentConfirmation{
		OrderID:         uuid.NewString(),
		StripePaymentID: fmt.Sprintf("ch_%016x", rand.Int63()),
		ReceiptURL:      fmt.Sprintf("https://pay.stripe.com/receipts/%d", rand.Intn(999999)),
	}
}

func main() {
	addr := kafka.TCP("localhost:9092")

	writer := &kafka.Writer{
		Addr:  addr,
		Topic: "payment.succeeded",
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(2 * time.Second)
	for {
		select {
		case <-ticker.C:
			conf := randomConfirmation()
			data, _ := json.Marshal(conf)
			writer.WriteMessages(context.Background(), kafka.Message{Value: data})
			log.Println("payment confirmation sent", conf.OrderID)
		case <-ctx.Done():
			return
		}
	}
}
