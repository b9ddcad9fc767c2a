package pkg

// ModuleName tags agents log lines.
const ModuleName = "agents"
