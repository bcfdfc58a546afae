package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	ranges  []string
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "not found"}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	rng := aws.ToString(in.Range)
	f.ranges = append(f.ranges, rng)
	var start, end int
	if _, err := fmt.Sscanf(rng, "bytes=%d-%d", &start, &end); err != nil {
		return nil, err
	}
	if start >= len(data) {
		return nil, &smithy.GenericAPIError{Code: "InvalidRange"}
	}
	end = min(end, len(data)-1)
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data[start : end+1]))}, nil
}

func TestOpenS3ReadAt(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{"pf/CALC.EXE-77FDF17F.pf": record}}
	obj, err := OpenS3(context.Background(), client, "evidence", "pf/CALC.EXE-77FDF17F.pf")
	require.NoError(t, err)
	assert.Equal(t, int64(len(record)), obj.Size())

	p := make([]byte, 4)
	n, err := obj.ReadAt(p, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "SCCA", string(p))
	assert.Equal(t, []string{"bytes=4-7"}, client.ranges)

	// Reads past the end are clamped to the object.
	p = make([]byte, 10)
	n, err = obj.ReadAt(p, obj.Size()-3)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 3, n)
	assert.Equal(t, record[len(record)-3:], p[:n])

	n, err = obj.ReadAt(p, obj.Size())
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, n)
}

func TestOpenS3NotFound(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}}
	_, err := OpenS3(context.Background(), client, "evidence", "missing.pf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://evidence/host1/Prefetch/CALC.EXE-77FDF17F.pf")
	require.NoError(t, err)
	assert.Equal(t, "evidence", bucket)
	assert.Equal(t, "host1/Prefetch/CALC.EXE-77FDF17F.pf", key)

	for _, bad := range []string{"evidence/key", "s3://", "s3://bucket", "s3:///key"} {
		_, _, err := ParseS3URI(bad)
		assert.Error(t, err, bad)
	}
}
