package humio

var (
	repositoryParam = ParameterInfo{Name: "repository", Description: "Repository to operate on", Required: true}

	queryParams = []ParameterInfo{
		repositoryParam,
		{Name: "queryString", Description: "Humio query string", Required: true},
		{Name: "start", Description: "Start of the time range, relative (e.g. 24h) or epoch millis", Required: true},
		{Name: "end", Description: "End of the time range, e.g. now", Required: true},
		{Name: "isLive", Description: "Run as a live query (true/false)", Required: true},
		{Name: "timeZoneOffsetMinutes", Description: "Time zone offset in minutes", Required: true, Default: "0"},
		{Name: "arguments", Description: "Query arguments"},
	}
)

var commandCatalog = []CommandInfo{
	{
		Name:        CmdQuery,
		Description: "Run a synchronous query and return its results",
		Category:    "query",
		Tags:        []string{"read"},
		Parameters:  queryParams,
	},
	{
		Name:        CmdQueryJob,
		Description: "Start an asynchronous query job",
		Category:    "query",
		Tags:        []string{"write"},
		Parameters:  queryParams,
	},
	{
		Name:        CmdPoll,
		Description: "Poll the results of a query job",
		Category:    "query",
		Tags:        []string{"read"},
		Parameters: []ParameterInfo{
			repositoryParam,
			{Name: "id", Description: "Query job id", Required: true},
		},
	},
	{
		Name:        CmdDeleteJob,
		Description: "Delete a query job",
		Category:    "query",
		Tags:        []string{"write", "destructive"},
		Parameters: []ParameterInfo{
			repositoryParam,
			{Name: "id", Description: "Query job id", Required: true},
		},
	},
	{
		Name:        CmdListAlerts,
		Description: "List alerts in a repository",
		Category:    "alerts",
		Tags:        []string{"read"},
		Parameters:  []ParameterInfo{repositoryParam},
	},
	{
		Name:        CmdGetAlertByID,
		Description: "Get an alert by id",
		Category:    "alerts",
		Tags:        []string{"read"},
		Parameters: []ParameterInfo{
			repositoryParam,
			{Name: "id", Description: "Alert id", Required: true},
		},
	},
	{
		Name:        CmdCreateAlert,
		Description: "Create an alert",
		Category:    "alerts",
		Tags:        []string{"write"},
		Parameters: []ParameterInfo{
			repositoryParam,
			{Name: "name", Description: "Alert name", Required: true},
			{Name: "queryString", Description: "Humio query string", Required: true},
			{Name: "start", Description: "Query window start, e.g. 24h", Required: true},
			{Name: "throttleTimeMillis", Description: "Minimum time between notifications in milliseconds", Required: true},
			{Name: "notifiers", Description: "Comma-separated notifier ids", Required: true},
			{Name: "description", Description: "Alert description"},
			{Name: "silenced", Description: "Create the alert silenced (true/false)", Default: "false"},
			{Name: "labels", Description: "Comma-separated labels"},
		},
	},
	{
		Name:        CmdDeleteAlert,
		Description: "Delete an alert",
		Category:    "alerts",
		Tags:        []string{"write", "destructive"},
		Parameters: []ParameterInfo{
			repositoryParam,
			{Name: "id", Description: "Alert id", Required: true},
		},
	},
	{
		Name:        CmdListNotifiers,
		Description: "List alert notifiers in a repository",
		Category:    "notifiers",
		Tags:        []string{"read"},
		Parameters:  []ParameterInfo{repositoryParam},
	},
	{
		Name:        CmdGetNotifierByID,
		Description: "Get an alert notifier by id",
		Category:    "notifiers",
		Tags:        []string{"read"},
		Parameters: []ParameterInfo{
			repositoryParam,
			{Name: "id", Description: "Notifier id", Required: true},
		},
	},
	{
		Name:        CmdTestModule,
		Description: "Check connectivity and credentials",
		Category:    "status",
		Tags:        []string{"read"},
	},
	{
		Name:        CmdFetchIncidents,
		Description: "Fetch new events from the configured incident query",
		Category:    "incidents",
		Tags:        []string{"read", "stateful"},
	},
}

// Catalog returns a copy of the command metadata. It needs no client.
func Catalog() []CommandInfo {
	out := make([]CommandInfo, len(commandCatalog))
	copy(out, commandCatalog)
	return out
}

// Lookup returns the metadata for name.
func Lookup(name string) (CommandInfo, bool) {
	for _, c := range commandCatalog {
		if c.Name == name {
			return c, true
		}
	}
	return CommandInfo{}, false
}
