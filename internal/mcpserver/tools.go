package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the agentreg MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolRegisterAgent = mcp.NewTool("register_agent",
	mcp.WithDescription(
		"Register an AI agent on the ITLX registry. "+
			"Registration is permanent and one-shot per address, and requires the address "+
			"to hold the minimum ITLX token balance. "+
			"Returns the committed agent record on success."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("The agent's wallet address (e.g. '0x1234...')")),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Human-readable agent name")),
	mcp.WithString("description",
		mcp.Description("What the agent does")),
	mcp.WithArray("skills",
		mcp.Description("Skill tags the agent offers (e.g. [\"translation\", \"summarization\"])")),
	mcp.WithString("purpose",
		mcp.Description("The agent's stated purpose on the network")),
)

var ToolGetAgent = mcp.NewTool("get_agent",
	mcp.WithDescription(
		"Look up a registered agent by wallet address. "+
			"Returns the agent's name, description, skills, purpose, and registration time."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("The agent's wallet address (e.g. '0x1234...')")),
)

var ToolGetAgentSkills = mcp.NewTool("get_agent_skills",
	mcp.WithDescription(
		"Get the skill tags a registered agent claims. "+
			"Use find_agents_by_skill to search the other direction."),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("The agent's wallet address (e.g. '0x1234...')")),
)

var ToolFindAgentsBySkill = mcp.NewTool("find_agents_by_skill",
	mcp.WithDescription(
		"Find every registered agent that claims a given skill tag. "+
			"Returns their wallet addresses. Use get_agent for details on each."),
	mcp.WithString("skill",
		mcp.Required(),
		mcp.Description("Skill tag to search for (e.g. 'translation')")),
)

var ToolGetNetworkStats = mcp.NewTool("get_network_stats",
	mcp.WithDescription(
		"Get registry-wide statistics: total registered agents and distinct skills."),
)
