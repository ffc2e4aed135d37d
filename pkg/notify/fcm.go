package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// FCMSender delivers messages through Firebase Cloud Messaging topics.
type FCMSender struct {
	client *messaging.Client
}

func (s *FCMSender) Setup() error {
	firebaseAuthKey := os.Getenv("STATIONLY_FIREBASE_SERVICE_ACCOUNT")
	if firebaseAuthKey == "" {
		return errors.New("\"STATIONLY_FIREBASE_SERVICE_ACCOUNT\" not set in environment")
	}

	decodedKey, err := base64.StdEncoding.DecodeString(firebaseAuthKey)
	if err != nil {
		return err
	}

	app, err := firebase.NewApp(context.Background(), nil, option.WithCredentialsJSON(decodedKey))
	if err != nil {
		return err
	}

	s.client, err = app.Messaging(context.Background())
	if err != nil {
		return err
	}

	log.Info().Msg("Firebase Cloud Messaging initialised")

	return nil
}

func (s *FCMSender) SendBatch(ctx context.Context, messages []*Message) (BatchResult, error) {
	fcmMessages := make([]*messaging.Message, len(messages))
	for i, message := range messages {
		fcmMessages[i] = &messaging.Message{
			Topic: message.Topic,
			Data:  message.Data,
		}
	}

	response, err := s.client.SendEach(ctx, fcmMessages)
	if err != nil {
		return BatchResult{}, err
	}

	return BatchResult{
		SuccessCount: response.SuccessCount,
		FailureCount: response.FailureCount,
	}, nil
}

func (s *FCMSender) Send(ctx context.Context, message *Message) error {
	_, err := s.client.Send(ctx, &messaging.Message{
		Topic: message.Topic,
		Data:  message.Data,
	})

	return err
}
