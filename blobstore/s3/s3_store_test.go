package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Arstat/recstore/blobstore"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

// bufferUploader drains the upload body into memory.
type bufferUploader struct {
	key  string
	body []byte
	err  error
}

func (u *bufferUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	u.key = aws.ToString(input.Key)
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	if u.err != nil {
		return nil, u.err
	}
	u.body = body
	return &manager.UploadOutput{}, nil
}

func TestStore_Open(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStoreWithClient(mockClient, &bufferUploader{}, "test-bucket", "prefix")

	t.Run("NotFound", func(t *testing.T) {
		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return *input.Bucket == "test-bucket" && *input.Key == "prefix/foo"
		})).Return(nil, &types.NoSuchKey{}).Once()

		_, err := store.Open(context.Background(), "foo")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return *input.Bucket == "test-bucket" && *input.Key == "prefix/bar"
		})).Return(&s3.GetObjectOutput{
			Body:          io.NopCloser(strings.NewReader("snapshot")),
			ContentLength: aws.Int64(8),
		}, nil).Once()

		blob, err := store.Open(context.Background(), "bar")
		require.NoError(t, err)
		assert.Equal(t, int64(8), blob.Size())
		data, err := io.ReadAll(blob)
		require.NoError(t, err)
		assert.Equal(t, "snapshot", string(data))
	})

	mockClient.AssertExpectations(t)
}

func TestStore_Put(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStoreWithClient(mockClient, &bufferUploader{}, "test-bucket", "prefix")

	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Key == "prefix/put" && aws.ToInt64(input.ContentLength) == 3
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(context.Background(), "put", []byte("abc")))
	mockClient.AssertExpectations(t)
}

func TestStore_Create(t *testing.T) {
	up := &bufferUploader{}
	store := NewStoreWithClient(new(MockS3Client), up, "test-bucket", "prefix/")

	w, err := store.Create(context.Background(), "streamed")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = w.Write([]byte("s3"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "prefix/streamed", up.key)
	assert.Equal(t, "hello s3", string(up.body))
	assert.ErrorIs(t, w.Close(), io.ErrClosedPipe)
}

func TestStore_CreateUploadError(t *testing.T) {
	uploadErr := errors.New("access denied")
	store := NewStoreWithClient(new(MockS3Client), &bufferUploader{err: uploadErr}, "b", "")

	w, err := store.Create(context.Background(), "x")
	require.NoError(t, err)
	_, err = w.Write([]byte("data"))
	require.NoError(t, err)
	assert.ErrorIs(t, w.Close(), uploadErr)
}

func TestStore_CreateAbort(t *testing.T) {
	up := &bufferUploader{}
	store := NewStoreWithClient(new(MockS3Client), up, "b", "")

	w, err := store.Create(context.Background(), "x")
	require.NoError(t, err)
	require.NoError(t, w.Abort())
	require.NoError(t, w.Abort())
	assert.Nil(t, up.body)
}

func TestStore_Delete(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStoreWithClient(mockClient, &bufferUploader{}, "test-bucket", "prefix")

	mockClient.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Bucket == "test-bucket" && *input.Key == "prefix/del"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	assert.NoError(t, store.Delete(context.Background(), "del"))
	mockClient.AssertExpectations(t)
}

func TestStore_List_Pagination(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStoreWithClient(mockClient, &bufferUploader{}, "test-bucket", "prefix/")

	// Page 1
	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken == nil && *input.Prefix == "prefix/"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("token"),
		Contents:              []types.Object{{Key: aws.String("prefix/2")}},
	}, nil).Once()

	// Page 2
	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken != nil && *input.ContinuationToken == "token"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
		Contents:    []types.Object{{Key: aws.String("prefix/1")}},
	}, nil).Once()

	keys, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, keys)
	mockClient.AssertExpectations(t)
}

func TestStore_List_RootPrefixIsDirectory(t *testing.T) {
	for _, root := range []string{"backups", "backups/"} {
		t.Run(root, func(t *testing.T) {
			mockClient := new(MockS3Client)
			store := NewStoreWithClient(mockClient, &bufferUploader{}, "test-bucket", root)

			mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
				return *input.Prefix == "backups/people-"
			})).Return(&s3.ListObjectsV2Output{
				IsTruncated: aws.Bool(false),
				Contents:    []types.Object{{Key: aws.String("backups/people-1.rcsa")}},
			}, nil).Once()

			keys, err := store.List(context.Background(), "people-")
			require.NoError(t, err)
			assert.Equal(t, []string{"people-1.rcsa"}, keys)
			mockClient.AssertExpectations(t)
		})
	}
}

func TestStore_List_NoRootPrefix(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStoreWithClient(mockClient, &bufferUploader{}, "test-bucket", "")

	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return *input.Prefix == ""
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
		Contents:    []types.Object{{Key: aws.String("a.rcsa")}},
	}, nil).Once()

	keys, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.rcsa"}, keys)
	mockClient.AssertExpectations(t)
}
