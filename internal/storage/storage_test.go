package storage

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestIsNoSuchKey(t *testing.T) {
	assert.False(t, IsNoSuchKey(nil))
	assert.True(t, IsNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, IsNoSuchKey(fmt.Errorf("wrapped: %w", minio.ErrorResponse{Code: "NotFound"})))
	assert.True(t, IsNoSuchKey(errors.New("The specified key does not exist.")))
	assert.False(t, IsNoSuchKey(minio.ErrorResponse{Code: "AccessDenied", Message: "denied"}))
}

func TestKeys(t *testing.T) {
	pdf := ResumePDFKey("c1")
	assert.True(t, strings.HasPrefix(pdf, "generated-resumes/c1/"))
	assert.True(t, strings.HasSuffix(pdf, ".pdf"))
	assert.NotEqual(t, pdf, ResumePDFKey("c1"))

	avatar := AvatarKey("c1", ".png")
	assert.True(t, OwnedBy(avatar, AvatarPrefix, "c1"))
	assert.False(t, OwnedBy(avatar, AvatarPrefix, "c2"))
	assert.False(t, OwnedBy(avatar, ResumePDFPrefix, "c1"))
	assert.False(t, OwnedBy("avatars/c1/../c2/x.png", AvatarPrefix, "c1"))
	assert.False(t, OwnedBy("avatars//x.png", AvatarPrefix, ""))
}
