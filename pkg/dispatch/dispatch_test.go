package dispatch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wrapgen/pkg/cheader"
	"github.com/Sumatoshi-tech/wrapgen/pkg/dispatch"
)

const header = `
int newtInit(void);
int newtFinished(void);
void newtCls(void);
newtComponent newtLabel(int left, int top, const char * text);
void newtLabelSetText(newtComponent co, const char * text);
void newtFormAddComponent(newtComponent form, newtComponent co);
void newtFormAddComponents(newtComponent form, ...);
void newtinternal(void);
void slang_helper(void);
`

const table = `static struct builtin_entry table[] = {
    { "Init",             wrap_Init },
    { "Cls",              wrap_Cls },
    {"Label",wrap_Label},
    { "FormAddComponent", wrap_FormAddComponent },
    { "Removed",          wrap_Removed },
    { "lowercase",        wrap_lowercase },
    { "Init",             wrap_Init },
    { NULL, NULL }
};
`

func TestHeaderNames(t *testing.T) {
	t.Parallel()

	funcs, err := cheader.Extract(context.Background(), "newt.h", []byte(header))
	require.NoError(t, err)

	names := dispatch.HeaderNames(funcs, "newt")

	assert.Equal(t, []string{
		"Cls", "Finished", "FormAddComponent", "FormAddComponents", "Init", "Label", "LabelSetText",
	}, names)
}

func TestHeaderNames_EmptyPrefix(t *testing.T) {
	t.Parallel()

	funcs := []cheader.Function{{Name: "Alpha"}, {Name: "beta"}, {Name: "Alpha"}}

	assert.Equal(t, []string{"Alpha"}, dispatch.HeaderNames(funcs, ""))
}

func TestTableNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Cls", "FormAddComponent", "Init", "Label", "Removed"}, dispatch.TableNames(table))
	assert.Empty(t, dispatch.TableNames("int main(void) { return 0; }"))
}

func TestCompare(t *testing.T) {
	t.Parallel()

	report := dispatch.Compare(
		[]string{"Init", "Label", "Cls", "FormRun"},
		[]string{"Label", "Init", "Removed"},
	)

	assert.Equal(t, []string{"Cls", "FormRun", "Init", "Label"}, report.Header)
	assert.Equal(t, []string{"Init", "Label", "Removed"}, report.Wrapped)
	assert.Equal(t, []string{"Cls", "FormRun"}, report.Missing)
	assert.Equal(t, []string{"Removed"}, report.Extra)
}

func TestCompare_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	header := []string{"b", "a", "a"}
	dispatch.Compare(header, nil)

	assert.Equal(t, []string{"b", "a", "a"}, header)
}

func TestCompare_FullCoverage(t *testing.T) {
	t.Parallel()

	report := dispatch.Compare([]string{"Init"}, []string{"Init"})

	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Extra)
}

func TestGroupByPrefix(t *testing.T) {
	t.Parallel()

	groups := dispatch.GroupByPrefix([]string{
		"FormAddComponents", "Label", "FormAddComponent", "CheckboxTreeAddItem", "LabelSetText", "FORMAT",
	})

	assert.Equal(t, []dispatch.Group{
		{Prefix: "CheckboxTree", Names: []string{"CheckboxTreeAddItem"}},
		{Prefix: "FORMAT", Names: []string{"FORMAT"}},
		{Prefix: "FormAdd", Names: []string{"FormAddComponent", "FormAddComponents"}},
		{Prefix: "Label", Names: []string{"Label"}},
		{Prefix: "LabelSet", Names: []string{"LabelSetText"}},
	}, groups)
}

func TestGroupByPrefix_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, dispatch.GroupByPrefix(nil))
}
