package cheader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCPlusPlus_BlanksOnlyCPlusPlusBranch(t *testing.T) {
	t.Parallel()

	source := []byte("#ifdef __cplusplus\nextern \"C\" {\n#else\nint c_only(void);\n#endif\nint f(void);\n")

	masked := maskCPlusPlus(source)

	assert.Len(t, masked, len(source))
	assert.Equal(t, "#ifdef __cplusplus\n            \n#else\nint c_only(void);\n#endif\nint f(void);\n", string(masked))
}

func TestMaskCPlusPlus_NestedConditionals(t *testing.T) {
	t.Parallel()

	source := []byte("#if defined(__cplusplus)\n#ifdef X\nclass A;\n#endif\n}\n#endif\nint f(void);\n")

	masked := string(maskCPlusPlus(source))

	assert.Equal(t, "#if defined(__cplusplus)\n        \n        \n      \n \n#endif\nint f(void);\n", masked)
}

func TestMaskCPlusPlus_LeavesPlainSource(t *testing.T) {
	t.Parallel()

	source := []byte("#ifndef __cplusplus\nint f(void);\n#endif\n")

	assert.Equal(t, string(source), string(maskCPlusPlus(source)))
}
