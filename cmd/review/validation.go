package review

import (
	"fmt"
)

// validateReviewArgs validates the arguments provided to the review command.
func validateReviewArgs(options *RunOptionsReview, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("invalid argument(s) received, the review command takes flags only")
	}

	if options.Repo == "" {
		return fmt.Errorf("the 'repo' flag must be specified")
	}

	if options.BaseSHA == "" {
		return fmt.Errorf("the 'base' flag must be specified")
	}

	if options.HeadSHA == "" {
		return fmt.Errorf("the 'head' flag must be specified")
	}

	if options.PRNumber < 0 {
		return fmt.Errorf("the 'pr' flag must be a positive integer")
	}

	return nil
}
