package reporter

// NullReporter discards every event. Useful as a library default when the
// caller supplies no reporter of its own.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)                     {}
func (NullReporter) RunStarted(RunSummary)                        {}
func (NullReporter) StageChange(StageProgress)                    {}
func (NullReporter) RenderStarted(int)                            {}
func (NullReporter) RenderProgress(PartProgress)                  {}
func (NullReporter) VerificationComplete(VerificationSummary)     {}
func (NullReporter) RenderComplete(RenderOutcome)                 {}
func (NullReporter) Warning(string)                               {}
func (NullReporter) Error(ReporterError)                          {}
func (NullReporter) Verbose(string)                               {}

// CompositeReporter fans every call out to a fixed set of Reporters, used
// to drive the terminal and the log file from the same event stream.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter returns a Reporter that forwards to each of rs in order.
func NewCompositeReporter(rs ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: rs}
}

func (c *CompositeReporter) Hardware(s HardwareSummary) {
	for _, r := range c.reporters {
		r.Hardware(s)
	}
}

func (c *CompositeReporter) RunStarted(s RunSummary) {
	for _, r := range c.reporters {
		r.RunStarted(s)
	}
}

func (c *CompositeReporter) StageChange(s StageProgress) {
	for _, r := range c.reporters {
		r.StageChange(s)
	}
}

func (c *CompositeReporter) RenderStarted(total int) {
	for _, r := range c.reporters {
		r.RenderStarted(total)
	}
}

func (c *CompositeReporter) RenderProgress(p PartProgress) {
	for _, r := range c.reporters {
		r.RenderProgress(p)
	}
}

func (c *CompositeReporter) VerificationComplete(s VerificationSummary) {
	for _, r := range c.reporters {
		r.VerificationComplete(s)
	}
}

func (c *CompositeReporter) RenderComplete(s RenderOutcome) {
	for _, r := range c.reporters {
		r.RenderComplete(s)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(e ReporterError) {
	for _, r := range c.reporters {
		r.Error(e)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
