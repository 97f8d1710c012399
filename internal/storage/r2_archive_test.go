package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoice-builder/internal/export"
	"invoice-builder/internal/timeutil"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func fixedArchiver(client PutObjectAPI) *R2Archiver {
	a := NewArchiver(client, "invoices", "exports")
	a.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, timeutil.JST) }
	return a
}

func TestArchiveUploads(t *testing.T) {
	client := new(mockS3)
	var body []byte
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "invoices" &&
			*in.Key == "exports/2026-10-15/0123456789abcdef/invoice.pdf" &&
			*in.ContentType == "application/pdf"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		body, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	art := &export.Artifact{
		Filename:    "invoice.pdf",
		ContentType: "application/pdf",
		Key:         "export:pdf:3:true:ffff0123456789abcdef",
		Data:        []byte("%PDF-1.3"),
	}
	require.NoError(t, fixedArchiver(client).Archive(context.Background(), art))

	assert.Equal(t, []byte("%PDF-1.3"), body)
	client.AssertExpectations(t)
}

func TestArchiveError(t *testing.T) {
	client := new(mockS3)
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	err := fixedArchiver(client).Archive(context.Background(), &export.Artifact{Filename: "invoice.png", Key: "k"})
	assert.ErrorContains(t, err, "access denied")
	assert.ErrorContains(t, err, "exports/2026-10-15/k/invoice.png")
}
