// internal/workers/conversation/normalize-text/normalizer_test.go
package normalizetext

import (
	"context"
	"testing"

	"github.com/Kathan1010/LoanAdviser/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		hint     string
		expected string
		changes  []string
	}{
		{
			name:     "clean input untouched",
			text:     "I need a loan",
			expected: "I need a loan",
			changes:  []string{},
		},
		{
			name:     "whitespace and currency",
			text:     "  I need  Rs. 50000\n loan ",
			expected: "I need ₹50000 loan",
			changes:  []string{ChangeWhitespace, ChangeCurrency},
		},
		{
			name:     "rs without dot",
			text:     "salary is Rs 45000",
			expected: "salary is ₹45000",
			changes:  []string{ChangeCurrency},
		},
		{
			name:     "inr prefix",
			text:     "INR 20000 per month",
			expected: "₹20000 per month",
			changes:  []string{ChangeCurrency},
		},
		{
			name:     "rupees before number",
			text:     "rupees 5000 emi",
			expected: "₹5000 emi",
			changes:  []string{ChangeCurrency},
		},
		{
			name:     "years is not a currency marker",
			text:     "for 5 years",
			expected: "for 5 years",
			changes:  []string{},
		},
		{
			name:     "number words",
			text:     "I have been working for two years",
			expected: "I have been working for 2 years",
			changes:  []string{ChangeNumbers},
		},
		{
			name:     "magnitude words keep their multiplier",
			text:     "My income is fifty thousand",
			expected: "My income is fifty thousand",
			changes:  []string{},
		},
		{
			name:     "only the word before the magnitude is kept",
			text:     "twenty five thousand",
			expected: "20 five thousand",
			changes:  []string{ChangeNumbers},
		},
		{
			name:     "case insensitive number words",
			text:     "Five years",
			expected: "5 years",
			changes:  []string{ChangeNumbers},
		},
		{
			name:     "words containing number words",
			text:     "someone often",
			expected: "someone often",
			changes:  []string{},
		},
		{
			name:     "hindi particles",
			text:     "mujhe 5 lakh chahiye hai",
			hint:     "hi",
			expected: "mujhe 5 lakh chahiye है",
			changes:  []string{ChangeTransliteration},
		},
		{
			name:     "no transliteration without hint",
			text:     "mujhe 5 lakh chahiye hai",
			expected: "mujhe 5 lakh chahiye hai",
			changes:  []string{},
		},
		{
			name:     "decomposed unicode is composed",
			text:     "cafe\u0301 owner",
			expected: "caf\u00e9 owner",
			changes:  []string{ChangeUnicode},
		},
	}

	n := New(logger.NewTestLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(context.Background(), tt.text, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.NormalizedText)
			assert.Equal(t, tt.changes, got.ChangesMade)
			assert.Equal(t, tt.text, got.OriginalText)
			if len(tt.changes) == 0 {
				assert.Equal(t, 1.0, got.Confidence)
			} else {
				assert.Equal(t, 0.95, got.Confidence)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(logger.NewNoOpLogger())
	inputs := []string{
		"  I need  Rs. 50000  loan for five years ",
		"mujhe ek loan chahiye hai nahi",
		"INR 30000 salary, twenty years old",
	}

	for _, in := range inputs {
		first, err := n.Normalize(context.Background(), in, "hindi")
		require.NoError(t, err)
		second, err := n.Normalize(context.Background(), first.NormalizedText, "hindi")
		require.NoError(t, err)

		assert.Equal(t, first.NormalizedText, second.NormalizedText, in)
		assert.Empty(t, second.ChangesMade, in)
	}
}

func TestNormalize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(logger.NewNoOpLogger()).Normalize(ctx, "hello", "")
	assert.ErrorIs(t, err, context.Canceled)
}
