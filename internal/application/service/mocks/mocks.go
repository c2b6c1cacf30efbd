// Package mocks holds testify mocks of the service ports.
package mocks

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/stretchr/testify/mock"

	"github.com/khoahotran/careerfolio/adapters/event"
	"github.com/khoahotran/careerfolio/internal/application/service"
)

type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishMailEvent(ctx context.Context, payload event.MailEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *EventPublisher) PublishEnrollmentEvent(ctx context.Context, payload event.EnrollmentEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, mail service.Mail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

type Uploader struct {
	mock.Mock
}

func (m *Uploader) Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error) {
	args := m.Called(ctx, file, folder, publicID)
	return args.String(0), args.Error(1)
}

func (m *Uploader) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

func (m *Uploader) GetClient() *cloudinary.Cloudinary {
	args := m.Called()
	if c, ok := args.Get(0).(*cloudinary.Cloudinary); ok {
		return c
	}
	return nil
}

type VideoStore struct {
	mock.Mock
}

func (m *VideoStore) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, objectName, r, size, contentType)
	return args.Error(0)
}

func (m *VideoStore) Open(ctx context.Context, objectName string) (service.VideoObject, error) {
	args := m.Called(ctx, objectName)
	if obj, ok := args.Get(0).(service.VideoObject); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VideoStore) Remove(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

var (
	_ service.EventPublisher = (*EventPublisher)(nil)
	_ service.Mailer         = (*Mailer)(nil)
	_ service.Uploader       = (*Uploader)(nil)
	_ service.VideoStore     = (*VideoStore)(nil)
)
