package mock

var runTitles = []string{
	"Production Web Server Deployment",
	"Database Maintenance and Backup",
	"Security Patches and Updates",
	"Application Configuration Update",
	"Load Balancer Health Check",
	"Cache Server Optimization",
	"Monitoring Agent Installation",
	"SSL Certificate Renewal",
	"Docker Container Updates",
	"Kubernetes Cluster Maintenance",
	"System Package Upgrades",
	"Firewall Rules Configuration",
	"Database Replication Setup",
	"API Gateway Configuration",
	"Message Queue Deployment",
	"Backup System Verification",
}

var environments = []string{"prod", "staging", "dev"}

var services = []string{"web", "db", "cache", "lb", "app", "worker", "api", "queue"}

var locations = []string{"us-east-1", "us-west-2", "eu-west-1", "eu-central-1", "ap-south-1"}

var playNames = []string{
	"System setup",
	"Package management",
	"Service configuration",
	"Application deployment",
	"Security hardening",
	"Monitoring",
	"File management",
}

var taskNames = []string{
	"Install required system packages",
	"Configure system timezone and locale",
	"Setup system users and groups",
	"Configure firewall rules",
	"Install Python dependencies",
	"Update package cache",
	"Configure Nginx web server",
	"Setup PostgreSQL database",
	"Configure Redis cache server",
	"Deploy application code",
	"Run database migrations",
	"Restart application services",
	"Configure SSH security settings",
	"Setup SSL/TLS certificates",
	"Install monitoring agents",
	"Configure log rotation",
	"Deploy configuration templates",
	"Clean up temporary files",
}

var failureMessages = []string{
	"No package matching 'nginx-extras' is available",
	"Failed to connect to the host via ssh: Connection timed out",
	"Destination /etc/nginx/sites-enabled not writable",
	"Service postgresql not found on host",
	"non-zero return code",
	"Timeout (12s) waiting for privilege escalation prompt",
	"Could not find or access 'templates/app.conf.j2'",
}
