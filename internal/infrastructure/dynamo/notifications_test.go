package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkReadUpdates_SetsFlagAndTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	updates := markReadUpdates(now)

	assert.Equal(t, true, updates[fieldIsRead])
	assert.Equal(t, "2026-08-28T10:30:00Z", updates[fieldUpdatedAt])

	ue, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	// is_read < updated_at in sorted field order.
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", ue.Expr)
	assert.Equal(t, fieldIsRead, ue.Names["#f0"])
	assert.Equal(t, fieldUpdatedAt, ue.Names["#f1"])
	flag, ok := ue.Values[":v0"].(*types.AttributeValueMemberBOOL)
	require.True(t, ok)
	assert.True(t, flag.Value)
}
